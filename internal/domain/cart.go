package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultTitle подставляется, когда у книги не указано название.
	DefaultTitle = "Unknown Book"
	// DefaultAuthor подставляется, когда у книги не указан автор.
	DefaultAuthor = "Unknown Author"
)

// LineTitle возвращает название, под которым позиция хранится в корзине.
func LineTitle(title string) string {
	if title == "" {
		return DefaultTitle
	}
	return title
}

// CartLine представляет одну позицию корзины с агрегированным количеством.
type CartLine struct {
	// ID генерируется при добавлении и уникален в пределах корзины.
	ID     string `json:"id"`
	Title  string `json:"title" validate:"required"`
	Author string `json:"author"`
	// Price: цена за единицу в отображаемом формате (например, "$12.50").
	Price     string    `json:"price"`
	Quantity  int       `json:"quantity" validate:"gt=0"`
	DateAdded time.Time `json:"dateAdded"`
}

// NewCartLine создаёт позицию с количеством 1. Пустые поля заменяются значениями по умолчанию.
func NewCartLine(title, author, price string, now time.Time) (CartLine, error) {
	title = LineTitle(title)
	if author == "" {
		author = DefaultAuthor
	}
	if price == "" {
		price = DefaultPrice
	}

	line := CartLine{
		ID:        uuid.NewString(),
		Title:     title,
		Author:    author,
		Price:     price,
		Quantity:  1,
		DateAdded: now.UTC(),
	}
	if err := validate(line); err != nil {
		return CartLine{}, err
	}
	return line, nil
}

// UnitPrice возвращает цену за единицу как число.
func (l CartLine) UnitPrice() float64 {
	return ParsePrice(l.Price)
}

// Total возвращает стоимость позиции: цена * количество.
func (l CartLine) Total() float64 {
	return l.UnitPrice() * float64(l.Quantity)
}

// Cart: упорядоченный список позиций текущей сессии.
type Cart []CartLine

// IndexOf ищет позицию по точному совпадению названия. Возвращает -1, если её нет.
func (c Cart) IndexOf(title string) int {
	for i, line := range c {
		if line.Title == title {
			return i
		}
	}
	return -1
}

// TotalItems суммирует количество по всем позициям.
func (c Cart) TotalItems() int {
	var total int
	for _, line := range c {
		total += line.Quantity
	}
	return total
}

// TotalPrice суммирует стоимость позиций и округляет до центов.
func (c Cart) TotalPrice() float64 {
	var total float64
	for _, line := range c {
		total += line.Total()
	}
	return RoundCents(total)
}

// Clone возвращает независимую копию корзины.
func (c Cart) Clone() Cart {
	if c == nil {
		return Cart{}
	}
	out := make(Cart, len(c))
	copy(out, c)
	return out
}

// Validate проверяет инварианты корзины: обязательные поля и уникальность названий.
func (c Cart) Validate() []error {
	var errs []error
	seen := make(map[string]struct{}, len(c))
	for _, line := range c {
		if err := validate(line); err != nil {
			errs = append(errs, err)
		}
		if _, ok := seen[line.Title]; ok {
			errs = append(errs, ErrDuplicateLine)
		}
		seen[line.Title] = struct{}{}
	}
	return errs
}

// Normalize приводит прочитанную корзину к инвариантам: позиции без названия
// получают DefaultTitle, позиции с одинаковым названием сливаются с суммой
// количеств, позиции с количеством <= 0 отбрасываются. Второе значение: число
// исправленных позиций.
func (c Cart) Normalize() (Cart, int) {
	out := make(Cart, 0, len(c))
	index := make(map[string]int, len(c))
	var fixed int
	for _, line := range c {
		if line.Quantity <= 0 {
			fixed++
			continue
		}
		if line.Title == "" {
			line.Title = DefaultTitle
			fixed++
		}
		if i, ok := index[line.Title]; ok {
			out[i].Quantity += line.Quantity
			fixed++
			continue
		}
		index[line.Title] = len(out)
		out = append(out, line)
	}
	return out, fixed
}
