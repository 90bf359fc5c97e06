package element

import (
	"fmt"
	"io"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/multierr"

	"github.com/matzehuels/pagesmith/pkg/errors"
)

// ValidateDocument checks a document before it is persisted.
//
// All problems are collected; the returned error has code
// [errors.ErrCodeInvalidElement] and wraps every individual failure
// (use multierr.Errors to list them). A nil or empty document is valid.
func ValidateDocument(elems []Element) error {
	var errs error
	seen := make(map[string]bool)
	Walk(elems, func(e *Element, _ int) {
		errs = multierr.Append(errs, validateElement(e, seen))
	})
	if errs == nil {
		return nil
	}
	n := len(multierr.Errors(errs))
	return errors.Wrap(errors.ErrCodeInvalidElement, errs, "document has %d invalid field(s)", n)
}

func validateElement(e *Element, seen map[string]bool) error {
	var errs error
	label := e.ID
	switch {
	case e.ID == "":
		label = "<no id>"
		errs = multierr.Append(errs, fmt.Errorf("%s element: id is required", e.Type))
	case seen[e.ID]:
		errs = multierr.Append(errs, fmt.Errorf("element %s: duplicate id", e.ID))
	}
	seen[e.ID] = true

	if e.Type == "" {
		errs = multierr.Append(errs, fmt.Errorf("element %s: type is required", label))
	}

	e.Styles.Each(func(k, v string) {
		if err := ValidateStyle(k, v); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("element %s: %w", label, err))
		}
	})

	urls := []struct {
		field     string
		value     string
		allowData bool
	}{
		{"src", e.Src, true},
		{"url", e.URL, false},
		{"videoUrl", e.VideoURL, false},
	}
	for _, u := range urls {
		if err := errors.ValidateURL(u.value, u.allowData); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("element %s: %s: %s", label, u.field, errors.UserMessage(err)))
		}
	}
	return errs
}

// ValidateStyle checks one declaration. The key must be a single CSS
// identifier (camelCase or kebab-case) or a custom property name. The value
// is tokenized and rejected if it could end the declaration or open a block.
// Units and keywords are not checked.
func ValidateStyle(key, value string) error {
	if !isIdentifier(key) {
		return errors.New(errors.ErrCodeInvalidStyle, "invalid style property %q", key)
	}
	if err := checkValue(value); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidStyle, err, "invalid value for %q", key)
	}
	return nil
}

func isIdentifier(key string) bool {
	if key == "" || strings.TrimSpace(key) != key {
		return false
	}
	l := css.NewLexer(parse.NewInputString(key))
	tt, _ := l.Next()
	if tt != css.IdentToken && tt != css.CustomPropertyNameToken {
		return false
	}
	next, _ := l.Next()
	return next == css.ErrorToken && l.Err() == io.EOF
}

func checkValue(value string) error {
	if strings.Contains(value, "</") {
		return fmt.Errorf("markup is not allowed")
	}
	l := css.NewLexer(parse.NewInputString(value))
	for {
		tt, data := l.Next()
		switch tt {
		case css.ErrorToken:
			if l.Err() == io.EOF {
				return nil
			}
			return l.Err()
		case css.SemicolonToken, css.LeftBraceToken, css.RightBraceToken:
			return fmt.Errorf("unexpected %q", data)
		case css.BadStringToken, css.BadURLToken:
			return fmt.Errorf("unterminated %s", tt)
		case css.CDOToken, css.CDCToken:
			return fmt.Errorf("unexpected %q", data)
		case css.DelimToken:
			if len(data) == 1 && data[0] == '\\' {
				return fmt.Errorf("stray escape")
			}
		}
	}
}
