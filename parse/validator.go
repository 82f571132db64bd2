package parse

import (
	"errors"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"

	multicode "github.com/redvampir/multicode-sub002"
)

// Validator validates parsed documents
type Validator interface {
	Validate(doc *Document) error
}

// RequiredFieldsValidator runs the struct tags of the data model
type RequiredFieldsValidator struct{}

// Validate validates required fields and option ranges
func (v *RequiredFieldsValidator) Validate(doc *Document) error {
	err := multicode.Validator().Struct(doc)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate document: %w", err)
	}
	errs := make([]error, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		errs = append(errs, &FieldError{Namespace: fe.Namespace(), Tag: fe.Tag(), Param: fe.Param()})
	}
	return CombineErrors(errs...)
}

// ReferenceValidator checks that node, function and parameter ids are
// unique and that every edge connects nodes of its own graph
type ReferenceValidator struct{}

// Validate validates the main graph and every function body
func (v *ReferenceValidator) Validate(doc *Document) error {
	if doc.Graph == nil {
		return nil
	}

	var errs []error
	errs = append(errs, checkGraph("main", doc.Graph)...)

	seen := make(map[string]bool, len(doc.Graph.Functions))
	for _, fn := range doc.Graph.Functions {
		if fn == nil {
			continue
		}
		if seen[fn.ID] {
			errs = append(errs, NewReferenceError("main", "function", fn.ID, "duplicate id"))
		}
		seen[fn.ID] = true

		scope := "function " + fn.Name
		errs = append(errs, checkParameters(scope, fn)...)
		if fn.Graph != nil {
			errs = append(errs, checkGraph(scope, fn.Graph)...)
		}
	}
	return CombineErrors(errs...)
}

func checkGraph(scope string, g *multicode.Graph) []error {
	var errs []error

	nodes := make(map[string]*multicode.Node, len(g.Nodes))
	for _, n := range g.Nodes {
		if n == nil {
			continue
		}
		if _, dup := nodes[n.ID]; dup {
			errs = append(errs, NewReferenceError(scope, "node", n.ID, "duplicate id"))
		}
		nodes[n.ID] = n
	}

	for i, e := range g.Edges {
		if e == nil {
			continue
		}
		element := fmt.Sprintf("edges[%d]", i)
		// Ports need not be declared on nodes, so only node ids are checked
		if _, ok := nodes[e.SourceNode]; !ok {
			errs = append(errs, NewReferenceError(scope, element, e.SourceNode, "unknown source node"))
		}
		if _, ok := nodes[e.TargetNode]; !ok {
			errs = append(errs, NewReferenceError(scope, element, e.TargetNode, "unknown target node"))
		}
	}
	return errs
}

func checkParameters(scope string, fn *multicode.Function) []error {
	var errs []error
	ids := make(map[string]bool, len(fn.Parameters))
	for _, p := range fn.Parameters {
		if ids[p.ID] {
			errs = append(errs, NewReferenceError(scope, "parameter", p.ID, "duplicate id"))
		}
		ids[p.ID] = true
	}
	return errs
}

// FunctionCallValidator rejects calls to functions the document does not
// define. Generation only warns about them, so it is opt-in.
type FunctionCallValidator struct{}

// Validate validates the functionId of every call node
func (v *FunctionCallValidator) Validate(doc *Document) error {
	if doc.Graph == nil {
		return nil
	}

	graphs := map[string]*multicode.Graph{"main": doc.Graph}
	for _, fn := range doc.Graph.Functions {
		if fn != nil && fn.Graph != nil {
			graphs["function "+fn.Name] = fn.Graph
		}
	}

	var errs []error
	for scope, g := range graphs {
		for _, n := range g.NodesOfType(multicode.NodeCallUserFunction) {
			id := n.StringProperty("functionId", "")
			switch {
			case id == "":
				errs = append(errs, NewReferenceError(scope, "node", n.ID, "call has no functionId"))
			case doc.Graph.FindFunction(id) == nil:
				errs = append(errs, NewReferenceError(scope, "node", n.ID, fmt.Sprintf("unknown function %q", id)))
			}
		}
	}
	sortErrors(errs)
	return CombineErrors(errs...)
}

func sortErrors(errs []error) {
	sort.SliceStable(errs, func(i, j int) bool { return errs[i].Error() < errs[j].Error() })
}

// CompositeValidator combines multiple validators
type CompositeValidator struct {
	validators []Validator
}

// NewCompositeValidator creates a validator that runs multiple validators
func NewCompositeValidator(validators ...Validator) *CompositeValidator {
	return &CompositeValidator{validators: validators}
}

// Validate runs all validators
func (v *CompositeValidator) Validate(doc *Document) error {
	var allErrors []error
	for _, val := range v.validators {
		if err := val.Validate(doc); err != nil {
			allErrors = append(allErrors, err)
		}
	}
	if len(allErrors) > 0 {
		return &ValidationErrors{Errors: allErrors}
	}
	return nil
}

// StrictValidator includes all validators
func StrictValidator() Validator {
	return NewCompositeValidator(
		&RequiredFieldsValidator{},
		&ReferenceValidator{},
		&FunctionCallValidator{},
	)
}
