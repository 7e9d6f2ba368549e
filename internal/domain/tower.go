// Package domain holds the records exchanged between the siege-map board, the
// collaborator API and the store.
package domain

import (
	"strconv"
	"time"
)

// Color is the bucket a tower belongs to on the map.
type Color string

const (
	ColorBlue   Color = "blue"
	ColorRed    Color = "red"
	ColorYellow Color = "yellow"
)

// Colors lists the accepted colors in display order.
var Colors = []Color{ColorBlue, ColorRed, ColorYellow}

// Valid reports whether c is one of the accepted colors.
func (c Color) Valid() bool {
	switch c {
	case ColorBlue, ColorRed, ColorYellow:
		return true
	}
	return false
}

// OrDefault returns c, or blue when c is empty.
func (c Color) OrDefault() Color {
	if c == "" {
		return ColorBlue
	}
	return c
}

// HQ is the tower number of the headquarters tower.
const HQ = "QG"

// TowerNumbers lists the accepted tower numbers: "QG" then "1".."12".
var TowerNumbers = func() []string {
	out := []string{HQ}
	for i := 1; i <= 12; i++ {
		out = append(out, strconv.Itoa(i))
	}
	return out
}()

// ValidTowerNumber reports whether n is "QG" or "1".."12".
func ValidTowerNumber(n string) bool {
	if n == HQ {
		return true
	}
	v, err := strconv.Atoi(n)
	return err == nil && v >= 1 && v <= 12 && strconv.Itoa(v) == n
}

// StarOptions lists the accepted star counts.
var StarOptions = []int{4, 5}

// ValidStars reports whether s is 4 or 5.
func ValidStars(s int) bool {
	return s == 4 || s == 5
}

// Tower is a positioned region on a named map image. Geometry is stored in
// the image's natural pixel space. Width is always derived from Height.
type Tower struct {
	ID          string    `json:"id"`
	MapName     string    `json:"mapName"`
	TowerNumber string    `json:"towerNumber"`
	Stars       int       `json:"stars"`
	Color       Color     `json:"color"`
	X           float64   `json:"x"`
	Y           float64   `json:"y"`
	Width       float64   `json:"width"`
	Height      float64   `json:"height"`
	DefenseIDs  string    `json:"defenseIds"`
	CreatedBy   string    `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
