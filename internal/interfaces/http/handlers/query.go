package handlers

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/turtacn/KeyIP-Landscape/internal/application/analytics"
	"github.com/turtacn/KeyIP-Landscape/pkg/errors"
)

// filterParams are the corpus filter query parameters shared by every
// analytics endpoint.
type filterParams struct {
	DateRange    string `form:"dateRange" binding:"omitempty,max=16"`
	Type         string `form:"type" binding:"omitempty,max=32"`
	Jurisdiction string `form:"jurisdiction" binding:"omitempty,max=16"`
}

func (p filterParams) filter() analytics.Filter {
	return analytics.Filter{DateRange: p.DateRange, Type: p.Type, Jurisdiction: p.Jurisdiction}
}

// landscapeParams adds the technology field and the result size.
type landscapeParams struct {
	filterParams
	Field string `form:"field" binding:"omitempty,max=128"`
	TopN  *int   `form:"topN" binding:"omitempty,min=1"`
}

func (p landscapeParams) query() analytics.Query {
	f := p.filter()
	f.Field = p.Field
	q := analytics.Query{Filter: f}
	if p.TopN != nil {
		q.TopN = *p.TopN
	}
	return q
}

type assetParams struct {
	filterParams
	Category string `form:"category" binding:"omitempty,max=256"`
}

var registerTagNames sync.Once

// useFormNames makes validation errors report query parameter names instead
// of Go field names.
func useFormNames() {
	registerTagNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
}

// bindQuery decodes and validates r's query string into dst. Any failure is
// returned as a COMMON_010 validation error.
func bindQuery(r *http.Request, dst interface{}) error {
	useFormNames()
	err := binding.Query.Bind(r, dst)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if stderrors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, describeFieldError(fe))
		}
		return errors.Validation("invalid query parameters").WithDetail(strings.Join(msgs, "; "))
	}
	return errors.Validation("invalid query parameters").WithDetail(err.Error())
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
	}
}

// checkTopN enforces the configured upper bound, which struct tags cannot
// express.
func checkTopN(p landscapeParams, max int) error {
	if p.TopN != nil && max > 0 && *p.TopN > max {
		return errors.Validation(fmt.Sprintf("topN must be between 1 and %d", max)).
			WithDetail(fmt.Sprintf("topN=%d", *p.TopN))
	}
	return nil
}

//Personal.AI order the ending
