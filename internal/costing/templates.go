package costing

// Template is a named starting point for a recipe: the ingredients it
// usually needs, quantities left for the operator to fill in.
type Template struct {
	Name        string
	Ingredients []string
}

// Templates lists the shop's base recipes in menu order.
var Templates = []Template{
	{
		Name:        "プレーンワッフル",
		Ingredients: []string{"米粉", "コーンスターチ", "片栗粉", "三温糖", "ベーキングパウダー", "牛乳", "無糖ヨーグルト", "卵", "米油"},
	},
	{
		Name:        "チョコワッフル",
		Ingredients: []string{"米粉", "ココアパウダー", "コーンスターチ", "片栗粉", "三温糖", "ベーキングパウダー", "牛乳", "無糖ヨーグルト", "卵", "米油"},
	},
	{
		Name: "カスタム（白紙）",
	},
}

// TemplateByName returns the template called name.
func TemplateByName(name string) (Template, bool) {
	for _, t := range Templates {
		if t.Name == name {
			return t, true
		}
	}
	return Template{}, false
}

// Available filters the template's ingredients down to those the catalog
// knows, preserving template order.
func (t Template) Available(catalog Catalog) []string {
	names := make([]string, 0, len(t.Ingredients))
	for _, name := range t.Ingredients {
		if _, err := catalog.Lookup(name); err == nil {
			names = append(names, name)
		}
	}
	return names
}

// Lines turns a list of ingredient names into zero-quantity recipe lines.
func Lines(names []string) []Line {
	lines := make([]Line, 0, len(names))
	for _, name := range names {
		lines = append(lines, Line{Ingredient: name})
	}
	return lines
}
