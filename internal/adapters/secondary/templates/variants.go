package templates

import "github.com/fredcamaral/slideforge/internal/domain/entities"

// templateClass is carried by the root element of every rendered slide
const templateClass = "slide-template"

func builtInVariants() []*Variant {
	return []*Variant{
		{
			Name: entities.TemplateTitle,
			Fields: []FieldSpec{
				{Name: "title", Default: "New Slide"},
				{Name: "subtitle", Default: "Subtitle here"},
			},
			Layout: el("div", templateClass+" title-slide",
				text("h1", "", "title", CodecText),
				text("h2", "", "subtitle", CodecText),
			),
			Styles: `
.title-slide { display: flex; flex-direction: column; justify-content: center; align-items: center; height: 100%; text-align: center; }
.title-slide h1 { font-size: 4rem; margin-bottom: 1rem; }
.title-slide h2 { font-size: 2rem; color: #666; font-weight: 400; }
`,
		},
		{
			Name: entities.TemplateContent,
			Fields: []FieldSpec{
				{Name: "title", Default: "Topic Title"},
				{Name: "body", Default: "Add your content here..."},
			},
			Layout: el("div", templateClass+" content-slide",
				text("h2", "", "title", CodecText),
				text("div", "content-body", "body", CodecLines),
			),
			Styles: `
.content-slide { padding: 4rem; height: 100%; display: flex; flex-direction: column; }
.content-slide h2 { font-size: 3rem; margin-bottom: 2rem; }
.content-slide .content-body { font-size: 1.5rem; line-height: 1.6; }
`,
		},
		{
			Name: entities.TemplateQuote,
			Fields: []FieldSpec{
				{Name: "quote", Default: "Insert inspiring quote here..."},
				{Name: "author", Default: "Author Name"},
			},
			Layout: el("div", templateClass+" quote-slide",
				text("blockquote", "", "quote", CodecQuoted),
				text("cite", "", "author", CodecCited),
			),
			Styles: `
.quote-slide { display: flex; flex-direction: column; justify-content: center; align-items: center; height: 100%; padding: 4rem; text-align: center; background: #f8f9fa; }
.quote-slide blockquote { font-size: 3rem; font-style: italic; margin-bottom: 2rem; line-height: 1.4; }
.quote-slide cite { font-size: 1.5rem; font-weight: bold; }
`,
		},
		{
			Name: entities.TemplateImage,
			Fields: []FieldSpec{
				{Name: "title", Default: "Image Caption"},
				{Name: "imageUrl", Default: "https://picsum.photos/1920/1080"},
			},
			Layout: el("div", templateClass+" image-slide",
				el("div", "overlay",
					text("h2", "", "title", CodecText),
				),
			).withBackground("imageUrl"),
			Styles: `
.image-slide { height: 100%; background-size: cover; background-position: center; display: flex; justify-content: center; align-items: center; position: relative; }
.image-slide .overlay { background: rgba(0, 0, 0, 0.5); padding: 2rem; border-radius: 8px; }
.image-slide h2 { color: white; font-size: 3rem; text-shadow: 2px 2px 4px rgba(0, 0, 0, 0.5); }
`,
		},
		{
			Name: entities.TemplateSplit,
			Fields: []FieldSpec{
				{Name: "title", Default: "Split Content"},
				{Name: "body", Default: "Details on the left..."},
				{Name: "imageUrl", Default: "https://picsum.photos/800/1080"},
			},
			Layout: el("div", templateClass+" split-slide",
				el("div", "half text-half",
					text("h2", "", "title", CodecText),
					text("p", "", "body", CodecText),
				),
				el("div", "half image-half").withBackground("imageUrl"),
			),
			Styles: `
.split-slide { display: flex; height: 100%; }
.split-slide .half { flex: 1; height: 100%; }
.split-slide .text-half { padding: 4rem; display: flex; flex-direction: column; justify-content: center; }
.split-slide .image-half { background-size: cover; background-position: center; }
.split-slide h2 { font-size: 2.5rem; margin-bottom: 1.5rem; }
.split-slide p { font-size: 1.25rem; line-height: 1.6; white-space: pre-line; }
`,
		},
		{
			Name: entities.TemplateMetrics,
			Fields: []FieldSpec{
				{Name: "title", Default: "Key Performance Indicators"},
				{Name: "metric1Value", Default: "85%"},
				{Name: "metric1Label", Default: "Growth"},
				{Name: "metric2Value", Default: "1.2M"},
				{Name: "metric2Label", Default: "Users"},
				{Name: "metric3Value", Default: "$50k"},
				{Name: "metric3Label", Default: "Revenue"},
			},
			Layout: el("div", templateClass+" metrics-slide",
				text("h2", "", "title", CodecText),
				el("div", "metrics-grid",
					metricCard(1),
					metricCard(2),
					metricCard(3),
				),
			),
			Styles: `
.metrics-slide { padding: 4rem; height: 100%; display: flex; flex-direction: column; align-items: center; justify-content: center; }
.metrics-slide h2 { font-size: 3rem; margin-bottom: 3rem; }
.metrics-grid { display: grid; grid-template-columns: repeat(3, 1fr); gap: 2rem; width: 100%; }
.metric-card { background: #f1f5f9; padding: 2rem; border-radius: 12px; text-align: center; box-shadow: 0 4px 6px -1px rgba(0, 0, 0, 0.1); }
.metric-value { font-size: 4rem; font-weight: 700; color: #2563eb; margin-bottom: 1rem; }
.metric-label { font-size: 1.25rem; color: #64748b; font-weight: 500; }
`,
		},
	}
}

// metricCard binds the n-th value/label pair; cards are located positionally on import
func metricCard(n int) Element {
	prefix := "metric" + string(rune('0'+n))
	return el("div", "metric-card",
		text("div", "metric-value", prefix+"Value", CodecText),
		text("div", "metric-label", prefix+"Label", CodecText),
	)
}
