package location

// AutocompleteOption is an option key accepted by Autocomplete.
type AutocompleteOption string

const (
	AutocompleteBangla AutocompleteOption = "bangla"
	AutocompleteCity   AutocompleteOption = "city"
	AutocompleteArea   AutocompleteOption = "area"
)

func (o AutocompleteOption) IsValid() bool {
	switch o {
	case AutocompleteBangla, AutocompleteCity, AutocompleteArea:
		return true
	default:
		return false
	}
}

func autocompleteOptionNames() []string {
	return []string{string(AutocompleteBangla), string(AutocompleteCity), string(AutocompleteArea)}
}
