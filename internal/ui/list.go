package ui

// List pages a slice of items into a grid element
type List[T any] struct {
	grid     Element
	render   func(index int, item T) map[string]any
	items    []T
	pageSize int
	pageNum  int
}

// NewList creates a list showing rows*cols items of grid per page
func NewList[T any](grid Element, render func(index int, item T) map[string]any) *List[T] {
	r, c := grid.GridSize()
	size := r * c
	if size <= 0 {
		size = 1
	}
	return &List[T]{grid: grid, render: render, pageSize: size}
}

// BindPager wires prev and next buttons
func (l *List[T]) BindPager(prev, next Element) {
	if prev != nil {
		prev.On(EventClick, func(EventParams) { l.Prev() })
	}
	if next != nil {
		next.On(EventClick, func(EventParams) { l.Next() })
	}
}

// Items returns all items
func (l *List[T]) Items() []T { return l.items }

// SetItems replaces the items and shows the first page
func (l *List[T]) SetItems(items []T) {
	l.items = items
	l.pageNum = 0
	l.Update()
}

// Append adds an item and refreshes the current page
func (l *List[T]) Append(item T) {
	l.items = append(l.items, item)
	l.Update()
}

// Clear removes all items
func (l *List[T]) Clear() {
	l.SetItems(nil)
}

// PageSize returns items per page
func (l *List[T]) PageSize() int { return l.pageSize }

// PageNum returns the current page, starting at 0
func (l *List[T]) PageNum() int { return l.pageNum }

// Pages returns the number of pages, at least 1
func (l *List[T]) Pages() int {
	n := (len(l.items) + l.pageSize - 1) / l.pageSize
	return max(n, 1)
}

// Page returns the items on the current page
func (l *List[T]) Page() []T {
	start := l.pageNum * l.pageSize
	if start >= len(l.items) {
		return nil
	}
	end := min(start+l.pageSize, len(l.items))
	return l.items[start:end]
}

// At returns the item at index i of the current page
func (l *List[T]) At(i int) (T, bool) {
	page := l.Page()
	if i < 0 || i >= len(page) {
		var zero T
		return zero, false
	}
	return page[i], true
}

// Next shows the following page if there is one
func (l *List[T]) Next() {
	if l.pageNum+1 < l.Pages() {
		l.pageNum++
		l.Update()
	}
}

// Prev shows the preceding page if there is one
func (l *List[T]) Prev() {
	if l.pageNum > 0 {
		l.pageNum--
		l.Update()
	}
}

// Update renders the current page into the grid
func (l *List[T]) Update() {
	page := l.Page()
	rows := make([]map[string]any, len(page))
	base := l.pageNum * l.pageSize
	for i, it := range page {
		rows[i] = l.render(base+i, it)
	}
	l.grid.SetItems(rows)
}
