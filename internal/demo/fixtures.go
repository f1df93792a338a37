package demo

import (
	"fmt"
	"strings"
	"time"

	"agaxfeed/internal/blog"
)

// Post is one fixture article served by the demo handler.
type Post struct {
	Slug      string
	Title     string
	Published time.Time
	Content   string
	Labels    []string
	Thumbnail string
}

// Blog is a fixture blog. Posts are kept newest first, like Blogger does.
type Blog struct {
	ID    string
	Name  string
	Color string
	Posts []Post
}

var cet = time.FixedZone("CET", 3600)

func day(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, cet)
}

// Blogs returns the fixture blogs. The slice is rebuilt on every call so
// callers may modify it.
func Blogs() []Blog {
	return []Blog{
		{
			ID:    "novas",
			Name:  "Novas",
			Color: "#006699",
			Posts: []Post{
				{
					Slug:      "campionato-galego-absoluto",
					Title:     "Campionato Galego Absoluto 2024",
					Published: day(2024, time.March, 10, 18),
					Content: paragraphs(
						`<img src="https://blogger.googleusercontent.com/img/b/R29v/AVvX/s200/absoluto.jpg" alt="Sala de xogo">`,
						"O Campionato Galego Absoluto disputouse en Santiago con sesenta participantes e unha última rolda de infarto.",
						"A clasificación final decidiuse polo desempate e os tres primeiros obteñen praza para o Campionato de España.",
					),
					Labels: []string{"campionatos", "absoluto"},
				},
				{
					Slug:      "torneo-de-nadal",
					Title:     "Torneo de Nadal en Vigo",
					Published: day(2024, time.January, 5, 10),
					Content: paragraphs(
						"Máis de cen xogadores de todas as idades participaron no tradicional torneo de Nadal organizado polo club local.",
						"As partidas xogáronse a ritmo rápido durante toda a xornada e a entrega de premios pechou a celebración.",
					),
					Labels:    []string{"torneos"},
					Thumbnail: "https://1.bp.blogspot.com/-abc/XYZ/AAAA/s72-c/nadal.jpg",
				},
				{
					Slug:      "asemblea-anual",
					Title:     "Asemblea anual da federación",
					Published: day(2023, time.November, 20, 19),
					Content: paragraphs(
						"A asemblea aprobou o calendario da próxima tempada e as contas do exercicio anterior.",
					),
				},
				{
					Slug:      "xadrez-nas-escolas",
					Title:     "Xadrez nas escolas: balance do curso",
					Published: day(2023, time.June, 30, 12),
					Content: paragraphs(
						"O programa de xadrez nas escolas chegou este curso a corenta centros de ensino primario.",
						"Os monitores destacan a mellora na atención e no cálculo do alumnado participante.",
					),
					Labels: []string{"escolas", "formación"},
				},
				{
					Slug:      "resultados-liga",
					Title:     "Resultados da liga por equipos",
					Published: day(2023, time.March, 4, 21),
					Labels:    []string{"liga"},
				},
			},
		},
		{
			ID:    "xogando",
			Name:  "Xogando co Xadrez",
			Color: "#00AA66",
			Posts: []Post{
				{
					Slug:      "apertura-italiana",
					Title:     "A apertura italiana para principiantes",
					Published: day(2024, time.February, 14, 9),
					Content: paragraphs(
						`<img src="https://blogger.googleusercontent.com/img/b/R29v/AVvX/w400-h300/italiana.png">`,
						"A apertura italiana é unha das máis antigas do xadrez e ensina os principios básicos do desenvolvemento.",
						"Neste artigo revisamos as ideas principais e os erros máis habituais dos xogadores novos.",
					),
					Labels: []string{"aperturas", "formación", "principiantes", "teoría"},
				},
				{
					Slug:      "problema-da-semana",
					Title:     "Problema da semana: mate en dous",
					Published: day(2023, time.December, 1, 8),
					Content: paragraphs(
						"As brancas xogan e dan mate en dous movementos. Atoparás a solución no seguinte artigo.",
					),
					Labels: []string{"problemas"},
				},
				{
					Slug:      "finais-de-torres",
					Title:     "Finais de torres que todo xogador debe coñecer",
					Published: day(2023, time.September, 12, 17),
					Content: paragraphs(
						"A posición de Lucena e a posición de Philidor son a base de calquera final de torres.",
					),
					Labels:    []string{"finais"},
					Thumbnail: "https://blogger.googleusercontent.com/img/b/R29v/AVvX/s72-c/torres.jpg",
				},
				{
					Slug:      "chess-in-english",
					Title:     "Chess Openings Cheat Sheet",
					Published: day(2023, time.May, 2, 11),
					Content:   paragraphs("A short English summary of the most common openings."),
				},
			},
		},
		{
			ID:    "xadrecista",
			Name:  "Xadrecistas",
			Color: "#CC6600",
			Posts: []Post{
				{
					Slug:      "entrevista-gm",
					Title:     "Entrevista cun gran mestre galego",
					Published: day(2024, time.February, 28, 20),
					Content: paragraphs(
						"Falamos co último gran mestre galego sobre a súa preparación e os seus próximos torneos.",
						"Na conversa repasamos a súa carreira desde os primeiros torneos xuvenís ata o título.",
					),
					Labels: []string{"entrevistas"},
				},
				{
					Slug:      "historia-do-xadrez-galego",
					Title:     "Historia do xadrez galego",
					Published: day(2023, time.October, 8, 16),
					Content: paragraphs(
						"Un percorrido polos clubs históricos e as figuras que deron forma ao xadrez en Galicia.",
					),
					Labels: []string{"historia"},
				},
				{
					Slug:      "blitz-de-veran",
					Title:     "Blitz de verán",
					Published: day(2023, time.July, 22, 22),
					Content: paragraphs(
						"O blitz de verán reuniu a corenta xogadores nunha noite de partidas a tres minutos.",
					),
					Labels: []string{"torneos", "blitz"},
				},
			},
		},
	}
}

// Sources returns a Blogger source per fixture blog served under baseURL.
func Sources(baseURL string) []*blog.Source {
	blogs := Blogs()
	sources := make([]*blog.Source, 0, len(blogs))
	for _, b := range blogs {
		sources = append(sources, &blog.Source{
			ID:     b.ID,
			Name:   b.Name,
			URL:    strings.TrimSuffix(baseURL, "/") + "/" + b.ID,
			Color:  b.Color,
			Format: blog.FormatBlogger,
		})
	}
	return sources
}

// PostCount returns the number of fixture posts across every blog.
func PostCount() int {
	n := 0
	for _, b := range Blogs() {
		n += len(b.Posts)
	}
	return n
}

// Find returns the fixture blog with the given ID.
func Find(id string) (Blog, bool) {
	for _, b := range Blogs() {
		if b.ID == id {
			return b, true
		}
	}
	return Blog{}, false
}

// Link returns the public URL of a fixture post.
func Link(baseURL, blogID string, p Post) string {
	return fmt.Sprintf("%s/%s/%d/%02d/%s.html",
		strings.TrimSuffix(baseURL, "/"), blogID, p.Published.Year(), p.Published.Month(), p.Slug)
}

func paragraphs(parts ...string) string {
	var b strings.Builder
	for _, p := range parts {
		if strings.HasPrefix(p, "<") {
			b.WriteString(`<div class="separator">` + p + `</div>`)
			continue
		}
		b.WriteString("<p>" + p + "</p>")
	}
	return b.String()
}
