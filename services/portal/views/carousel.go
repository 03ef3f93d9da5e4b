package views

import "carenest/services/portal/models"

// Carousel steps through a verification request's documents with
// wraparound in both directions.
type Carousel struct {
	Documents []models.Document `json:"documents"`
	Index     int               `json:"index"`
}

func NewCarousel(docs []models.Document, index int) Carousel {
	c := Carousel{Documents: docs}
	c.Index = c.wrap(index)
	return c
}

func (c Carousel) wrap(i int) int {
	n := len(c.Documents)
	if n == 0 {
		return 0
	}
	return ((i % n) + n) % n
}

func (c Carousel) Empty() bool { return len(c.Documents) == 0 }

// Current is the shown document, zero when there are none.
func (c Carousel) Current() models.Document {
	if c.Empty() {
		return models.Document{}
	}
	return c.Documents[c.Index]
}

func (c Carousel) NextIndex() int { return c.wrap(c.Index + 1) }

func (c Carousel) PrevIndex() int { return c.wrap(c.Index - 1) }

// Position is the 1-based index shown as "n of m".
func (c Carousel) Position() int { return c.Index + 1 }
