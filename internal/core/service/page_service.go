package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/inkpress/cms-backend/internal/core/domain"
	"github.com/inkpress/cms-backend/internal/core/ports"
	"github.com/inkpress/cms-backend/internal/core/validation"
)

var pageSortFields = map[string]bool{
	"createdAt": true, "updatedAt": true, "publishedAt": true, "title": true,
	"sortOrder": true, "menuOrder": true, "views": true,
}

// PageService manages static pages. The homepage is a single site-wide
// pointer owned by the repository; IsHomePage on returned pages mirrors it.
type PageService struct {
	pages  ports.PageRepository
	logger zerolog.Logger
}

func NewPageService(pages ports.PageRepository, logger zerolog.Logger) *PageService {
	return &PageService{pages: pages, logger: logger}
}

func (s *PageService) List(ctx context.Context, input ports.ListPagesInput) (*domain.ListResult[*domain.Page], error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	filter := ports.PageFilter{
		Status:      domain.PageStatus(input.Status),
		Template:    domain.PageTemplate(input.Template),
		ParentID:    input.ParentID,
		AuthorID:    input.AuthorID,
		Search:      strings.TrimSpace(input.Search),
		ListOptions: sortable(input.ListOptions, pageSortFields, "sortOrder", false),
	}
	return s.list(ctx, filter)
}

func (s *PageService) ListPublished(ctx context.Context, input ports.ListPagesInput) (*domain.ListResult[*domain.Page], error) {
	input.Status = string(domain.PagePublished)
	return s.List(ctx, input)
}

// Menu returns published pages flagged for navigation, ordered by menuOrder
// then title.
func (s *PageService) Menu(ctx context.Context) ([]*domain.Page, error) {
	show := true
	res, err := s.list(ctx, ports.PageFilter{
		Status:      domain.PagePublished,
		ShowInMenu:  &show,
		ListOptions: domain.ListOptions{Page: 1, Limit: domain.MaxLimit, SortBy: "menuOrder"},
	})
	if err != nil {
		return nil, err
	}
	return res.Items, nil
}

func (s *PageService) Home(ctx context.Context) (*domain.Page, error) {
	id, err := s.pages.HomePageID(ctx)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, domain.ErrHomePageNotFound
	}
	page, err := s.pages.FindByID(ctx, id)
	if err != nil {
		return nil, domain.ErrHomePageNotFound
	}
	if page.Status != domain.PagePublished {
		return nil, domain.ErrHomePageNotFound
	}
	page.IsHomePage = true
	return page, nil
}

func (s *PageService) GetByID(ctx context.Context, id string) (*domain.Page, error) {
	page, err := s.pages.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return page, s.decorate(ctx, page)
}

func (s *PageService) GetBySlug(ctx context.Context, p *domain.Principal, slug string) (*domain.Page, error) {
	page, err := s.pages.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	if page.Status != domain.PagePublished {
		if p == nil || domain.Authorize(*p, domain.ActionPageUpdate, page.AuthorID) != nil {
			return nil, domain.ErrPageNotFound
		}
	} else if err := s.pages.IncrementViews(ctx, page.ID); err != nil {
		s.logger.Warn().Err(err).Str("page_id", page.ID).Msg("view count not recorded")
	} else {
		page.Views++
	}
	return page, s.decorate(ctx, page)
}

func (s *PageService) Create(ctx context.Context, p domain.Principal, input ports.CreatePageInput) (*domain.Page, error) {
	if err := domain.Authorize(p, domain.ActionPageCreate, ""); err != nil {
		return nil, err
	}
	input.Title = strings.TrimSpace(input.Title)
	input.Excerpt = strings.TrimSpace(input.Excerpt)
	input.SEOTitle = strings.TrimSpace(input.SEOTitle)
	input.SEODescription = strings.TrimSpace(input.SEODescription)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	if err := checkParent(ctx, "", input.ParentID, "parentPage", s.parentOf); err != nil {
		return nil, err
	}

	slug, err := uniqueSlug(ctx, input.Title, "", s.pages.SlugExists)
	if err != nil {
		return nil, err
	}

	template := domain.PageTemplate(input.Template)
	if template == "" {
		template = domain.TemplateDefault
	}
	status := domain.PageStatus(input.Status)
	if status == "" {
		status = domain.PageDraft
	}
	now := time.Now().UTC()
	page := &domain.Page{
		Title:         input.Title,
		Slug:          slug,
		Content:       input.Content,
		Excerpt:       input.Excerpt,
		FeaturedImage: input.FeaturedImage,
		Template:      template,
		Status:        status,
		ParentID:      input.ParentID,
		SortOrder:     input.SortOrder,
		AuthorID:      p.ID,
		ShowInMenu:    input.ShowInMenu,
		MenuOrder:     input.MenuOrder,
		CustomFields:  input.CustomFields,
		SEO: domain.SEO{
			Title:       input.SEOTitle,
			Description: input.SEODescription,
			Keywords:    input.SEOKeywords,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	publishStamp(page.Status == domain.PagePublished, &page.PublishedAt)

	if err := s.pages.Create(ctx, page); err != nil {
		return nil, err
	}
	// The page is stored by now; a failed pointer write only drops the flag.
	if input.IsHomePage {
		if err := s.pages.SetHomePage(ctx, page.ID); err != nil {
			s.logger.Error().Err(err).Str("page_id", page.ID).Msg("page created without homepage pointer")
		} else {
			page.IsHomePage = true
		}
	}

	s.logger.Info().Str("page_id", page.ID).Str("author_id", p.ID).Bool("home", page.IsHomePage).Msg("page created")
	return page, nil
}

func (s *PageService) Update(ctx context.Context, p domain.Principal, id string, input ports.UpdatePageInput) (*domain.Page, error) {
	page, err := s.pages.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := domain.Authorize(p, domain.ActionPageUpdate, page.AuthorID); err != nil {
		return nil, err
	}

	trimPtr(input.Title)
	trimPtr(input.Excerpt)
	trimPtr(input.SEOTitle)
	trimPtr(input.SEODescription)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	if input.ParentID != nil {
		if err := checkParent(ctx, page.ID, *input.ParentID, "parentPage", s.parentOf); err != nil {
			return nil, err
		}
		page.ParentID = *input.ParentID
	}
	if input.Title != nil && *input.Title != page.Title {
		slug, err := uniqueSlug(ctx, *input.Title, page.ID, s.pages.SlugExists)
		if err != nil {
			return nil, err
		}
		page.Title, page.Slug = *input.Title, slug
	}
	if input.Content != nil {
		page.Content = *input.Content
	}
	if input.Excerpt != nil {
		page.Excerpt = *input.Excerpt
	}
	if input.FeaturedImage != nil {
		page.FeaturedImage = *input.FeaturedImage
	}
	if input.Template != nil {
		page.Template = domain.PageTemplate(*input.Template)
	}
	if input.Status != nil {
		page.Status = domain.PageStatus(*input.Status)
	}
	if input.SortOrder != nil {
		page.SortOrder = *input.SortOrder
	}
	if input.ShowInMenu != nil {
		page.ShowInMenu = *input.ShowInMenu
	}
	if input.MenuOrder != nil {
		page.MenuOrder = *input.MenuOrder
	}
	if input.CustomFields != nil {
		page.CustomFields = *input.CustomFields
	}
	if input.SEOTitle != nil {
		page.SEO.Title = *input.SEOTitle
	}
	if input.SEODescription != nil {
		page.SEO.Description = *input.SEODescription
	}
	if input.SEOKeywords != nil {
		page.SEO.Keywords = *input.SEOKeywords
	}
	publishStamp(page.Status == domain.PagePublished, &page.PublishedAt)
	page.UpdatedAt = time.Now().UTC()

	if err := s.pages.Update(ctx, page); err != nil {
		return nil, err
	}

	if input.IsHomePage != nil {
		if *input.IsHomePage {
			err = s.pages.SetHomePage(ctx, page.ID)
		} else {
			err = s.pages.ClearHomePage(ctx, page.ID)
		}
		if err != nil {
			return nil, err
		}
	}
	return page, s.decorate(ctx, page)
}

// Delete refuses while child pages still reference the page.
func (s *PageService) Delete(ctx context.Context, p domain.Principal, id string) error {
	page, err := s.pages.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := domain.Authorize(p, domain.ActionPageDelete, page.AuthorID); err != nil {
		return err
	}

	children, err := s.pages.CountChildren(ctx, id)
	if err != nil {
		return err
	}
	if children > 0 {
		return domain.ErrPageHasChildren
	}

	if err := s.pages.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.pages.ClearHomePage(ctx, id); err != nil {
		s.logger.Warn().Err(err).Str("page_id", id).Msg("homepage pointer not cleared after delete")
	}

	s.logger.Info().Str("page_id", id).Str("by", p.ID).Msg("page deleted")
	return nil
}

func (s *PageService) list(ctx context.Context, filter ports.PageFilter) (*domain.ListResult[*domain.Page], error) {
	pages, total, err := s.pages.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if err := s.decorate(ctx, pages...); err != nil {
		return nil, err
	}
	return domain.NewListResult(pages, total, filter.ListOptions), nil
}

func (s *PageService) decorate(ctx context.Context, pages ...*domain.Page) error {
	if len(pages) == 0 {
		return nil
	}
	home, err := s.pages.HomePageID(ctx)
	if err != nil {
		return err
	}
	for _, pg := range pages {
		pg.IsHomePage = home != "" && pg.ID == home
	}
	return nil
}

func (s *PageService) parentOf(ctx context.Context, id string) (string, error) {
	page, err := s.pages.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	return page.ParentID, nil
}
