package funder

import (
	"Excelerate/api/pivot"
	"Excelerate/internal/notification"
)

// Funder bundles the validation probe and pivot builder for one funder's
// report format. Clear View is not registered here; its weekly cycle of
// daily files and combined pivots is handled by its own package.
type Funder struct {
	Name     string
	Validate func(path string) notification.ValidationResult
	Process  func(portfolio, path string) (*pivot.Table, error)
}

func rowFunder(e RowExtractor) Funder {
	return Funder{
		Name: e.FunderName(),
		Validate: func(path string) notification.ValidationResult {
			return ValidateStructure(e, path)
		},
		Process: func(_, path string) (*pivot.Table, error) {
			return Process(e, path)
		},
	}
}

var funders = []Funder{
	rowFunder(InAdvance{}),
	rowFunder(BHB{}),
	rowFunder(EFin{}),
	rowFunder(Kings{}),
	{
		Name: Boom{}.FunderName(),
		Validate: func(path string) notification.ValidationResult {
			return Boom{}.ValidateStructure(path)
		},
		Process: func(_, path string) (*pivot.Table, error) {
			return Boom{}.Process(path)
		},
	},
	{
		Name: BIG{}.FunderName(),
		Validate: func(path string) notification.ValidationResult {
			return BIG{}.ValidateStructure(path)
		},
		Process: func(portfolio, path string) (*pivot.Table, error) {
			return BIG{Portfolio: portfolio}.Process(path)
		},
	},
}

// Lookup finds the funder registered under name.
func Lookup(name string) (Funder, bool) {
	for _, f := range funders {
		if f.Name == name {
			return f, true
		}
	}
	return Funder{}, false
}

// Names lists the registered funders in registration order.
func Names() []string {
	names := make([]string, len(funders))
	for i, f := range funders {
		names[i] = f.Name
	}
	return names
}
