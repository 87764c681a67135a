package domain

import "time"

// PostStatus is the lifecycle state of a post.
type PostStatus string

const (
	PostDraft     PostStatus = "draft"
	PostPublished PostStatus = "published"
	PostArchived  PostStatus = "archived"
)

// SEO holds the search-engine metadata shared by posts and pages.
type SEO struct {
	Title       string   `json:"seoTitle,omitempty" bson:"seo_title"`
	Description string   `json:"seoDescription,omitempty" bson:"seo_description"`
	Keywords    []string `json:"seoKeywords,omitempty" bson:"seo_keywords"`
}

// Post is a blog entry owned by its author.
type Post struct {
	ID            string     `json:"id" bson:"_id"`
	Title         string     `json:"title" bson:"title"`
	Slug          string     `json:"slug" bson:"slug"`
	Content       string     `json:"content" bson:"content"`
	Excerpt       string     `json:"excerpt,omitempty" bson:"excerpt"`
	FeaturedImage string     `json:"featuredImage,omitempty" bson:"featured_image"`
	Status        PostStatus `json:"status" bson:"status"`
	PublishedAt   *time.Time `json:"publishedAt,omitempty" bson:"published_at"`
	Categories    []string   `json:"categories" bson:"categories"`
	Tags          []string   `json:"tags" bson:"tags"`
	AuthorID      string     `json:"author" bson:"author"`
	IsFeatured    bool       `json:"isFeatured" bson:"is_featured"`
	Likes         []string   `json:"likes" bson:"likes"`
	Views         int64      `json:"views" bson:"views"`
	SEO           `bson:",inline"`
	CreatedAt     time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" bson:"updated_at"`
}

// LikedBy reports whether userID has liked the post.
func (p *Post) LikedBy(userID string) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// PageStatus is the lifecycle state of a page.
type PageStatus string

const (
	PageDraft     PageStatus = "draft"
	PagePublished PageStatus = "published"
	PagePrivate   PageStatus = "private"
)

// PageTemplate selects the layout a page is rendered with.
type PageTemplate string

const (
	TemplateDefault PageTemplate = "default"
	TemplateLanding PageTemplate = "landing"
	TemplateContact PageTemplate = "contact"
	TemplateAbout   PageTemplate = "about"
)

// Page is a static page. IsHomePage is derived from the site homepage pointer
// and is never persisted on the page itself.
type Page struct {
	ID            string            `json:"id" bson:"_id"`
	Title         string            `json:"title" bson:"title"`
	Slug          string            `json:"slug" bson:"slug"`
	Content       string            `json:"content" bson:"content"`
	Excerpt       string            `json:"excerpt,omitempty" bson:"excerpt"`
	FeaturedImage string            `json:"featuredImage,omitempty" bson:"featured_image"`
	Template      PageTemplate      `json:"template" bson:"template"`
	Status        PageStatus        `json:"status" bson:"status"`
	PublishedAt   *time.Time        `json:"publishedAt,omitempty" bson:"published_at"`
	ParentID      string            `json:"parentPage,omitempty" bson:"parent_page"`
	SortOrder     int               `json:"sortOrder" bson:"sort_order"`
	AuthorID      string            `json:"author" bson:"author"`
	Views         int64             `json:"views" bson:"views"`
	ShowInMenu    bool              `json:"showInMenu" bson:"show_in_menu"`
	MenuOrder     int               `json:"menuOrder" bson:"menu_order"`
	IsHomePage    bool              `json:"isHomePage" bson:"-"`
	CustomFields  map[string]string `json:"customFields,omitempty" bson:"custom_fields"`
	SEO           `bson:",inline"`
	CreatedAt     time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" bson:"updated_at"`
}

// DefaultCategoryColor is applied when a category is created without a color.
const DefaultCategoryColor = "#6366f1"

// Category groups posts and may nest under a parent category.
type Category struct {
	ID          string    `json:"id" bson:"_id"`
	Name        string    `json:"name" bson:"name"`
	Slug        string    `json:"slug" bson:"slug"`
	Description string    `json:"description,omitempty" bson:"description"`
	Color       string    `json:"color" bson:"color"`
	Icon        string    `json:"icon,omitempty" bson:"icon"`
	ParentID    string    `json:"parentCategory,omitempty" bson:"parent_category"`
	IsActive    bool      `json:"isActive" bson:"is_active"`
	SortOrder   int       `json:"sortOrder" bson:"sort_order"`
	CreatedBy   string    `json:"createdBy" bson:"created_by"`
	PostCount   int64     `json:"postCount" bson:"-"`
	CreatedAt   time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updated_at"`
}

// MediaType is the coarse category derived from a file's MIME type.
type MediaType string

const (
	MediaImage    MediaType = "image"
	MediaVideo    MediaType = "video"
	MediaAudio    MediaType = "audio"
	MediaDocument MediaType = "document"
	MediaOther    MediaType = "other"
)

// Media is the metadata row for an uploaded file.
type Media struct {
	ID           string    `json:"id" bson:"_id"`
	Filename     string    `json:"filename" bson:"filename"`
	OriginalName string    `json:"originalName" bson:"original_name"`
	MimeType     string    `json:"mimetype" bson:"mimetype"`
	Size         int64     `json:"size" bson:"size"`
	Key          string    `json:"path" bson:"key"`
	URL          string    `json:"url" bson:"url"`
	Alt          string    `json:"alt,omitempty" bson:"alt"`
	Caption      string    `json:"caption,omitempty" bson:"caption"`
	Description  string    `json:"description,omitempty" bson:"description"`
	Type         MediaType `json:"type" bson:"type"`
	UploadedBy   string    `json:"uploadedBy" bson:"uploaded_by"`
	Tags         []string  `json:"tags" bson:"tags"`
	Folder       string    `json:"folder" bson:"folder"`
	IsPublic     bool      `json:"isPublic" bson:"is_public"`
	CreatedAt    time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updated_at"`
}

// Comment is a reader comment attached to a post.
type Comment struct {
	ID        string    `json:"id" bson:"_id"`
	PostID    string    `json:"post" bson:"post"`
	AuthorID  string    `json:"author" bson:"author"`
	Content   string    `json:"content" bson:"content"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at"`
}
