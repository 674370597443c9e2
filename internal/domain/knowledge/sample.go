package knowledge

// SampleData is the compliance starter graph loaded with graph.seed_sample.
func SampleData() GraphData {
	return GraphData{
		Entities: []Entity{
			{Name: "RoDTEP scheme", Type: "Scheme"},
			{Name: "duty drawback", Type: "Incentive"},
			{Name: "India", Type: "Country"},
			{Name: "Europe", Type: "Region"},
			{Name: "CE marking regulations", Type: "Regulation"},
			{Name: "US", Type: "Country"},
			{Name: "tax incentives", Type: "Incentive"},
			{Name: "green energy products", Type: "Product"},
		},
		Relations: []Relation{
			{Source: "RoDTEP scheme", Target: "duty drawback", Relation: "provides"},
			{Source: "duty drawback", Target: "India", Relation: "applies to"},
			{Source: "CE marking regulations", Target: "Europe", Relation: "applies to"},
			{Source: "US", Target: "tax incentives", Relation: "offers"},
			{Source: "tax incentives", Target: "green energy products", Relation: "targets"},
		},
	}
}
