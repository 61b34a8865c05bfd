// Package validation checks an investment description for completeness before
// a report is requested.
package validation

import (
	"context"
	"fmt"
	"strings"

	"github.com/de-tools/viability/pkg/models/domain"
	"github.com/de-tools/viability/pkg/services/llm"
	"github.com/de-tools/viability/pkg/services/prompts"
	"github.com/rs/zerolog"
)

type Result struct {
	Valid    bool
	Feedback string
}

type Validator interface {
	Validate(ctx context.Context, description string) (Result, error)
}

type descriptionValidator struct {
	prompt    *prompts.Prompt
	generator llm.Generator
}

func NewValidator(catalog *prompts.Catalog, generator llm.Generator) Validator {
	return &descriptionValidator{
		prompt:    catalog.MustGet(prompts.ValidateDescription),
		generator: generator,
	}
}

// Validate asks the analyst for feedback. The description is valid unless the
// feedback says "invalid".
func (v *descriptionValidator) Validate(ctx context.Context, description string) (Result, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return Result{}, fmt.Errorf("%w: description is required", domain.ErrInvalidRequest)
	}

	req, err := v.prompt.Render(struct{ Description string }{description})
	if err != nil {
		return Result{}, err
	}
	resp, err := v.generator.Generate(ctx, req)
	if err != nil {
		return Result{}, err
	}

	valid := !strings.Contains(strings.ToLower(resp.Text), "invalid")
	zerolog.Ctx(ctx).Debug().Bool("valid", valid).Msg("description validated")
	return Result{Valid: valid, Feedback: resp.Text}, nil
}
