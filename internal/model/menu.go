package model

import (
	"fmt"
	"strings"
)

type MenuItem struct {
	Name       string
	Price      Cents
	Type       string
	PhotoID    string
	PhotoQuery string
}

// Menu is immutable reference data loaded once per request. The set of food
// types is derived from the items.
type Menu struct {
	items  []MenuItem
	byName map[string]int
	types  map[string]string
}

func NewMenu(items []MenuItem) (Menu, error) {
	m := Menu{
		items:  make([]MenuItem, 0, len(items)),
		byName: make(map[string]int, len(items)),
		types:  make(map[string]string),
	}

	for _, item := range items {
		if item.Name == "" {
			return Menu{}, fmt.Errorf("menu item without a name")
		}
		if item.Type == "" {
			return Menu{}, fmt.Errorf("menu item %q has no type", item.Name)
		}
		if item.Price <= 0 {
			return Menu{}, fmt.Errorf("menu item %q has a non positive price", item.Name)
		}
		if _, dup := m.byName[item.Name]; dup {
			return Menu{}, fmt.Errorf("menu item %q is listed twice", item.Name)
		}

		m.byName[item.Name] = len(m.items)
		m.items = append(m.items, item)
		if _, ok := m.types[strings.ToLower(item.Type)]; !ok {
			m.types[strings.ToLower(item.Type)] = item.Type
		}
	}

	return m, nil
}

func (m Menu) Items() []MenuItem {
	out := make([]MenuItem, len(m.items))
	copy(out, m.items)
	return out
}

func (m Menu) Len() int {
	return len(m.items)
}

// Match resolves a requested name to a menu item: an exact name wins,
// otherwise the first item, in menu order, whose name contains it.
func (m Menu) Match(name string) (MenuItem, bool) {
	if name == "" {
		return MenuItem{}, false
	}
	if i, ok := m.byName[name]; ok {
		return m.items[i], true
	}
	for _, item := range m.items {
		if strings.Contains(item.Name, name) {
			return item, true
		}
	}
	return MenuItem{}, false
}

// NormalizeType maps a food type to the menu's spelling, case-insensitively.
func (m Menu) NormalizeType(foodType string) (string, bool) {
	canonical, ok := m.types[strings.ToLower(strings.TrimSpace(foodType))]
	return canonical, ok
}
