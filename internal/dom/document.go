package dom

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"golang.org/x/net/html"
)

var ErrRegionNotFound = errors.New("dom: region not found")

// Идентификаторы, которые страница обязана предоставить.
const (
	IDUploadButton   = "uploadBtn"
	IDFileInput      = "fileInput"
	IDResults        = "analysisResults"
	IDLastUpdated    = "last-updated"
	IDThreatsCount   = "threats-count"
	IDSecurityEvents = "securityEvents"
)

// Классы разметки карточек с кнопкой обновления.
const (
	ClassCard       = "card"
	ClassCardBody   = "card-body"
	ClassRefreshBtn = "refresh-btn"
)

// Card: карточка с кнопкой .refresh-btn и телом .card-body, которое приглушается при обновлении.
type Card struct {
	ID   string
	Body *Region
}

// Document: серверная копия DOM страницы дашборда.
type Document struct {
	root *html.Node
	byID map[string]*html.Node
	head *html.Node
	// reload: <meta http-equiv="refresh">, пока на странице идет фоновая работа
	reload *html.Node
}

// Parse разбирает шаблон страницы и индексирует элементы по id.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse page template: %w", err)
	}

	d := &Document{root: root, byID: make(map[string]*html.Node)}
	for _, n := range FindAll(root, func(n *html.Node) bool { return n.Type == html.ElementNode }) {
		if n.Data == "head" && d.head == nil {
			d.head = n
		}
		if id, ok := Attr(n, "id"); ok && id != "" {
			if _, dup := d.byID[id]; !dup {
				d.byID[id] = n
			}
		}
	}
	return d, nil
}

// Region возвращает область по id; компоненты получают области один раз при сборке.
func (d *Document) Region(id string) (*Region, error) {
	n, ok := d.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: #%s", ErrRegionNotFound, id)
	}
	return NewRegion(n), nil
}

// Regions резолвит сразу несколько областей, первая отсутствующая: ошибка.
func (d *Document) Regions(ids ...string) (map[string]*Region, error) {
	out := make(map[string]*Region, len(ids))
	for _, id := range ids {
		r, err := d.Region(id)
		if err != nil {
			return nil, err
		}
		out[id] = r
	}
	return out, nil
}

// HasResults читает флаг <body data-has-results="true">: разметка результатов
// уже отрендерена сервером и не должна затираться при первой загрузке.
func (d *Document) HasResults() bool {
	bodies := FindAll(d.root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "body"
	})
	if len(bodies) == 0 {
		return false
	}
	v, _ := Attr(bodies[0], "data-has-results")
	ok, _ := strconv.ParseBool(v)
	return ok
}

// RefreshCards находит все .refresh-btn внутри .card, у которых есть .card-body.
// ID карточки берется из атрибута id, иначе card-N по порядку.
func (d *Document) RefreshCards() []Card {
	var cards []Card
	seen := make(map[*html.Node]bool)

	buttons := FindAll(d.root, func(n *html.Node) bool { return HasClass(n, ClassRefreshBtn) })
	for _, btn := range buttons {
		card := Closest(btn, ClassCard)
		if card == nil || seen[card] {
			continue
		}
		bodies := FindAll(card, func(n *html.Node) bool { return HasClass(n, ClassCardBody) })
		if len(bodies) == 0 {
			continue
		}
		seen[card] = true

		id, _ := Attr(card, "id")
		if id == "" {
			id = fmt.Sprintf("card-%d", len(cards))
		}
		cards = append(cards, Card{ID: id, Body: NewRegion(bodies[0])})
	}
	return cards
}

// SetAutoReload включает перезагрузку страницы браузером через seconds секунд.
// seconds <= 0 убирает ее.
func (d *Document) SetAutoReload(seconds int) {
	if seconds <= 0 {
		if d.reload != nil && d.reload.Parent != nil {
			d.reload.Parent.RemoveChild(d.reload)
		}
		d.reload = nil
		return
	}
	if d.head == nil {
		return
	}
	if d.reload == nil {
		d.reload = SetAttr(Element("meta", ""), "http-equiv", "refresh")
		d.head.AppendChild(d.reload)
	}
	SetAttr(d.reload, "content", strconv.Itoa(seconds))
}

// AutoReload: текущий интервал перезагрузки, 0 если выключена.
func (d *Document) AutoReload() int {
	if d.reload == nil {
		return 0
	}
	v, _ := Attr(d.reload, "content")
	n, _ := strconv.Atoi(v)
	return n
}

func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}
