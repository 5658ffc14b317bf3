package services

import (
	"context"
	"fmt"

	"finanze/internal/core"
	"finanze/internal/ports"
)

// ReferenceValidator checks that the category and tags a transaction points
// to exist for the acting user. It never writes.
type ReferenceValidator struct {
	reader ports.ReferenceReader
}

func NewReferenceValidator(reader ports.ReferenceReader) *ReferenceValidator {
	return &ReferenceValidator{reader: reader}
}

// Validate returns *core.UnknownCategoryError or *core.UnknownTagsError when a
// reference is missing. Every missing tag is reported, in request order.
func (v *ReferenceValidator) Validate(ctx context.Context, userID, categoryName string, kind core.Kind, tagNames []string) error {
	ok, err := v.reader.CategoryExists(ctx, userID, categoryName, kind)
	if err != nil {
		return fmt.Errorf("check category: %w", err)
	}
	if !ok {
		return &core.UnknownCategoryError{UserID: userID, Name: categoryName, Kind: kind}
	}

	requested := core.UniqueNames(tagNames)
	if len(requested) == 0 {
		return nil
	}

	found, err := v.reader.FindTags(ctx, userID, requested)
	if err != nil {
		return fmt.Errorf("find tags: %w", err)
	}
	existing := make(map[string]struct{}, len(found))
	for _, name := range found {
		existing[name] = struct{}{}
	}
	var missing []string
	for _, name := range requested {
		if _, ok := existing[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &core.UnknownTagsError{UserID: userID, Missing: missing}
}
