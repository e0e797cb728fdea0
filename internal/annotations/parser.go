package annotations

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// annotationAST is the participle grammar for a single annotation comment:
//
//	//tether::<type> [positional...] [-Key=Value | -Flag]...
type annotationAST struct {
	Prefix     string       `parser:"@Prefix"`
	Type       string       `parser:"@Word"`
	Positional []string     `parser:"@(Word | String)*"`
	Options    []*optionAST `parser:"@@*"`
}

type optionAST struct {
	Key   string  `parser:"@Flag"`
	Value *string `parser:"(Equals @(Word | String))?"`
}

var annotationLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Prefix", Pattern: `//[ \t]*tether::`},
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
	{Name: "Flag", Pattern: `-[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Equals", Pattern: `=`},
	{Name: "String", Pattern: `"(\\.|[^"\\])*"`},
	{Name: "Word", Pattern: `[^\s="]+`},
})

// Parser turns tether:: comments into schema-validated annotations
type Parser struct {
	grammar  *participle.Parser[annotationAST]
	registry AnnotationRegistry
}

// NewParser creates a parser validating against the given registry.
// A nil registry selects the built-in schemas.
func NewParser(registry AnnotationRegistry) *Parser {
	if registry == nil {
		registry = BuiltinRegistry()
	}
	return &Parser{
		grammar: participle.MustBuild[annotationAST](
			participle.Lexer(annotationLexer),
			participle.Elide("Whitespace"),
			participle.Unquote("String"),
		),
		registry: registry,
	}
}

// IsAnnotation reports whether a comment line is meant to be a tether annotation
func IsAnnotation(comment string) bool {
	text := strings.TrimSpace(comment)
	if !strings.HasPrefix(text, "//") {
		return false
	}
	return strings.HasPrefix(strings.TrimSpace(text[2:]), Prefix)
}

// ParseAnnotation parses and validates one annotation comment
func (p *Parser) ParseAnnotation(comment string, location SourceLocation) (*ParsedAnnotation, error) {
	text := strings.TrimSpace(comment)
	if !IsAnnotation(text) {
		return nil, &SyntaxError{
			Msg:  "annotation must start with '//tether::'",
			Loc:  location,
			Hint: "Use format: //tether::type [arguments] [-Key=Value]",
		}
	}

	body := strings.TrimSpace(strings.TrimSpace(text[2:])[len(Prefix):])
	if body == "" {
		return nil, &SyntaxError{
			Msg:  "empty annotation",
			Loc:  location,
			Hint: "Provide an annotation type after 'tether::'",
		}
	}

	tree, err := p.grammar.ParseString(location.File, text)
	if err != nil {
		msg := err.Error()
		var perr participle.Error
		if errors.As(err, &perr) {
			msg = perr.Message()
		}
		return nil, &SyntaxError{
			Msg:  msg,
			Loc:  location,
			Hint: "Options must follow positional arguments and look like -Key=Value or -Flag",
		}
	}

	annotationType, err := ParseAnnotationType(tree.Type)
	if err != nil || !p.registry.IsRegistered(annotationType) {
		return nil, &SyntaxError{
			Msg:  fmt.Sprintf("unknown annotation type '%s'", tree.Type),
			Loc:  location,
			Hint: "Supported types: client, component, tag, log, retry, timeout",
		}
	}

	schema, err := p.registry.GetSchema(annotationType)
	if err != nil {
		return nil, err
	}

	parsed := &ParsedAnnotation{
		Type:       annotationType,
		Parameters: make(map[string]interface{}),
		Location:   location,
		Raw:        text,
	}

	if err := p.bindPositional(parsed, schema, tree.Positional); err != nil {
		return nil, err
	}
	if err := p.bindOptions(parsed, schema, tree.Options); err != nil {
		return nil, err
	}
	if err := p.validate(parsed, schema); err != nil {
		return nil, err
	}

	return parsed, nil
}

func (p *Parser) bindPositional(parsed *ParsedAnnotation, schema AnnotationSchema, values []string) error {
	if len(values) > len(schema.Positional) {
		return &ValidationError{
			Annotation: parsed.Type,
			Parameter:  fmt.Sprintf("#%d", len(schema.Positional)+1),
			Expected:   fmt.Sprintf("at most %d positional arguments", len(schema.Positional)),
			Actual:     strconv.Quote(values[len(schema.Positional)]),
			Loc:        parsed.Location,
			Hint:       "Pass options as -Key=Value",
		}
	}

	for i, raw := range values {
		name := schema.Positional[i]
		value, err := convertValue(schema.Parameters[name], raw)
		if err != nil {
			return p.conversionError(parsed, name, schema.Parameters[name], raw)
		}
		parsed.Parameters[name] = value
	}
	return nil
}

func (p *Parser) bindOptions(parsed *ParsedAnnotation, schema AnnotationSchema, options []*optionAST) error {
	for _, option := range options {
		key := strings.TrimPrefix(option.Key, "-")

		spec, exists := schema.Parameters[key]
		if !exists || isPositional(schema, key) {
			return &ValidationError{
				Annotation: parsed.Type,
				Parameter:  key,
				Expected:   "a known option",
				Actual:     "-" + key,
				Loc:        parsed.Location,
				Hint:       fmt.Sprintf("Check the spelling; examples: %s", strings.Join(schema.Examples, ", ")),
			}
		}
		if _, duplicate := parsed.Parameters[key]; duplicate {
			return &ValidationError{
				Annotation: parsed.Type,
				Parameter:  key,
				Expected:   "a single occurrence",
				Actual:     "repeated option",
				Loc:        parsed.Location,
				Hint:       fmt.Sprintf("Remove the duplicate -%s", key),
			}
		}

		if option.Value == nil {
			switch {
			case spec.Type == BoolType:
				parsed.Parameters[key] = true
			case spec.DefaultValue != nil:
				parsed.Parameters[key] = spec.DefaultValue
			default:
				return &ValidationError{
					Annotation: parsed.Type,
					Parameter:  key,
					Expected:   fmt.Sprintf("a %s value", spec.Type),
					Actual:     "no value",
					Loc:        parsed.Location,
					Hint:       fmt.Sprintf("Use -%s=<value>", key),
				}
			}
			continue
		}

		value, err := convertValue(spec, *option.Value)
		if err != nil {
			return p.conversionError(parsed, key, spec, *option.Value)
		}
		parsed.Parameters[key] = value
	}
	return nil
}

func (p *Parser) validate(parsed *ParsedAnnotation, schema AnnotationSchema) error {
	for _, name := range sortedParameterNames(schema) {
		spec := schema.Parameters[name]
		value, exists := parsed.Parameters[name]
		if !exists {
			if spec.Required {
				return &ValidationError{
					Annotation: parsed.Type,
					Parameter:  name,
					Expected:   fmt.Sprintf("required %s value", spec.Type),
					Actual:     "missing",
					Loc:        parsed.Location,
					Hint:       spec.Description,
				}
			}
			continue
		}
		if spec.Validator != nil {
			if err := spec.Validator(value); err != nil {
				return &ValidationError{
					Annotation: parsed.Type,
					Parameter:  name,
					Expected:   spec.Description,
					Actual:     fmt.Sprintf("%v", value),
					Loc:        parsed.Location,
					Hint:       err.Error(),
				}
			}
		}
	}

	for _, validator := range schema.Validators {
		if err := validator(parsed); err != nil {
			return err
		}
	}
	return nil
}

func (p *Parser) conversionError(parsed *ParsedAnnotation, name string, spec ParameterSpec, raw string) error {
	return &ValidationError{
		Annotation: parsed.Type,
		Parameter:  name,
		Expected:   fmt.Sprintf("a %s value", spec.Type),
		Actual:     strconv.Quote(raw),
		Loc:        parsed.Location,
		Hint:       spec.Description,
	}
}

func convertValue(spec ParameterSpec, raw string) (interface{}, error) {
	switch spec.Type {
	case IntType:
		return strconv.Atoi(raw)
	case BoolType:
		return strconv.ParseBool(raw)
	case DurationType:
		return time.ParseDuration(raw)
	case StringSliceType:
		var values []string
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				values = append(values, part)
			}
		}
		if len(values) == 0 {
			return nil, fmt.Errorf("empty list")
		}
		return values, nil
	default:
		return raw, nil
	}
}

func isPositional(schema AnnotationSchema, name string) bool {
	for _, positional := range schema.Positional {
		if positional == name {
			return true
		}
	}
	return false
}

func sortedParameterNames(schema AnnotationSchema) []string {
	names := make([]string, 0, len(schema.Parameters))
	for name := range schema.Parameters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
