package index

import "github.com/poiesic/folio/core"

func testDocs() []core.Document {
	return []core.Document{
		{
			ID:       "acer",
			Text:     "He builds Go services for the data platform at Acer America.",
			Metadata: core.Metadata{Category: "work", Keywords: []string{"Acer", "go", "data platform"}},
		},
		{
			ID:       "thesis",
			Text:     "His master's thesis studied graph neural networks for traffic forecasting.",
			Metadata: core.Metadata{Category: "research", Keywords: []string{"thesis", "research"}},
		},
		{
			ID:       "skills",
			Text:     "He writes Python, Go and SQL and deploys on Kubernetes.",
			Metadata: core.Metadata{Category: "skills", Keywords: []string{"python", "sql"}},
		},
		{
			ID:   "hobby",
			Text: "Outside work he restores old bicycles.",
		},
		{
			ID:   "acer-laptops",
			Text: "Acer also sells laptops.",
		},
	}
}
