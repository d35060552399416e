// Package view renders the detection form and its results.
package view

import (
	"embed"
	"html/template"
	"io"
	"strconv"

	"github.com/gomarkdown/markdown"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"cancerdetect/ml"
	"cancerdetect/pipeline"
)

//go:embed templates/index.html
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

type Options struct {
	Layout          Layout
	Title           string
	Subtitle        string
	IntroMarkdown   string
	Background      template.CSS
	TitleCaseLabels bool
}

type Renderer struct {
	opts  Options
	intro template.HTML
}

func NewRenderer(opts Options) *Renderer {
	r := &Renderer{opts: opts}
	if opts.IntroMarkdown != "" {
		r.intro = template.HTML(markdown.ToHTML([]byte(opts.IntroMarkdown), nil, nil))
	}
	return r
}

func (r *Renderer) Layout() Layout {
	return r.opts.Layout
}

// PageData is one render of the form. Nil Values render as zeros. Raw
// entries, keyed by feature index, are shown verbatim in place of Values.
type PageData struct {
	Values []float64
	Raw    map[int]string
	Result *pipeline.Result
	Error  string
}

type field struct {
	ID    string
	Name  string
	Label string
	Value string
}

type resultView struct {
	Banner      string
	BannerClass string
	Lines       []string
}

type page struct {
	Title      string
	Subtitle   string
	Intro      template.HTML
	Background template.CSS
	Layout     Layout
	Fields     []field
	Error      string
	Result     *resultView
}

func (r *Renderer) Render(w io.Writer, features *ml.FeatureSet, data PageData) error {
	p := message.NewPrinter(language.English)
	var caser cases.Caser
	if r.opts.TitleCaseLabels {
		caser = cases.Title(language.English)
	}

	names := features.Names()
	fields := make([]field, len(names))
	for i, name := range names {
		value := 0.0
		if i < len(data.Values) {
			value = data.Values[i]
		}
		label := name
		if r.opts.TitleCaseLabels {
			label = caser.String(name)
		}
		fields[i] = field{
			ID:    "feature-" + strconv.Itoa(i),
			Name:  name,
			Label: label,
			Value: FormatValue(value),
		}
		if raw, ok := data.Raw[i]; ok {
			fields[i].Value = raw
		}
	}

	view := page{
		Title:      r.opts.Title,
		Subtitle:   r.opts.Subtitle,
		Intro:      r.intro,
		Background: r.opts.Background,
		Layout:     r.opts.Layout,
		Fields:     fields,
		Error:      data.Error,
	}
	if data.Result != nil {
		view.Result = describe(p, data.Result)
	}
	return indexTemplate.Execute(w, view)
}

// FormatValue prints a feature value with the inputs' five decimals. The
// number input needs a locale-free value, so this bypasses the printer.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', 5, 64)
}

func describe(p *message.Printer, result *pipeline.Result) *resultView {
	view := &resultView{
		Lines: ProbabilityLines(p, result.Probabilities),
	}
	if result.Label == ml.Malignant {
		view.Banner = "Cancer Detected (Malignant)"
		view.BannerClass = "alert-error"
	} else {
		view.Banner = "No Cancer Detected (Benign)"
		view.BannerClass = "alert-success"
	}
	return view
}

// ProbabilityLines renders "Benign: NN.NN%" and "Malignant: NN.NN%".
func ProbabilityLines(p *message.Printer, probs ml.Probabilities) []string {
	if p == nil {
		p = message.NewPrinter(language.English)
	}
	return []string{
		p.Sprintf("Benign: %.2f%%", probs.Benign*100),
		p.Sprintf("Malignant: %.2f%%", probs.Malignant*100),
	}
}
