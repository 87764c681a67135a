package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gosimple/slug"

	"github.com/inkpress/cms-backend/internal/core/domain"
)

const maxSlugAttempts = 50

type slugChecker func(ctx context.Context, slug, excludeID string) (bool, error)

// uniqueSlug slugifies source and appends -2, -3, ... until exists reports a
// free value. excludeID lets a record keep its own slug on update.
func uniqueSlug(ctx context.Context, source, excludeID string, exists slugChecker) (string, error) {
	base := slug.Make(source)
	if base == "" {
		base = "untitled"
	}

	candidate := base
	for i := 2; i <= maxSlugAttempts+1; i++ {
		taken, err := exists(ctx, candidate, excludeID)
		if err != nil {
			return "", fmt.Errorf("check slug: %w", err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return "", domain.ErrSlugExists
}

// sortable restricts opts.SortBy to allowed, falling back to def.
func sortable(opts domain.ListOptions, allowed map[string]bool, def string, defDesc bool) domain.ListOptions {
	opts = opts.Normalize()
	if !allowed[opts.SortBy] {
		opts.SortBy = def
		opts.SortDesc = defDesc
	}
	return opts
}

func trimPtr(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}

// normalizeTags trims, lowercases and de-duplicates tags, dropping empties.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// splitTags parses the comma separated tag list sent by upload forms.
func splitTags(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return []string{}
	}
	return normalizeTags(strings.Split(csv, ","))
}

// publishStamp sets *at to now the first time a record becomes published.
func publishStamp(published bool, at **time.Time) {
	if published && *at == nil {
		now := time.Now().UTC()
		*at = &now
	}
}

// maxParentDepth bounds the ancestor walk in checkParent.
const maxParentDepth = 64

type parentLookup func(ctx context.Context, id string) (string, error)

// checkParent verifies that parentID exists and that linking id under it does
// not make id its own ancestor. id is empty for records not yet created.
func checkParent(ctx context.Context, id, parentID, field string, parentOf parentLookup) error {
	if parentID == "" {
		return nil
	}
	if parentID == id {
		return domain.NewValidationError(field, field+" cannot reference itself")
	}

	cur := parentID
	for depth := 0; cur != ""; depth++ {
		if depth >= maxParentDepth {
			return domain.NewValidationError(field, field+" hierarchy is too deep")
		}
		next, err := parentOf(ctx, cur)
		if err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				return err
			}
			if cur == parentID {
				return domain.NewValidationError(field, field+" does not exist")
			}
			return nil
		}
		if next == id && id != "" {
			return domain.NewValidationError(field, field+" would create a cycle")
		}
		cur = next
	}
	return nil
}
