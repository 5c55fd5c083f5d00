package store

// Color is a palette name such as "blue-500".
type Color string

var palette = map[Color]string{
	"blue-500":    "#3b82f6",
	"green-500":   "#22c55e",
	"emerald-500": "#10b981",
	"lime-500":    "#84cc16",
	"red-500":     "#ef4444",
	"rose-500":    "#f43f5e",
	"orange-500":  "#f97316",
	"amber-500":   "#f59e0b",
	"yellow-500":  "#eab308",
	"purple-500":  "#a855f7",
	"violet-500":  "#8b5cf6",
	"fuchsia-500": "#d946ef",
	"pink-500":    "#ec4899",
	"indigo-500":  "#6366f1",
	"sky-500":     "#0ea5e9",
	"teal-500":    "#14b8a6",
	"cyan-500":    "#06b6d4",
}

// Colors lists the palette in display order.
var Colors = []Color{
	"blue-500", "green-500", "emerald-500", "lime-500", "red-500", "rose-500",
	"orange-500", "amber-500", "yellow-500", "purple-500", "violet-500",
	"fuchsia-500", "pink-500", "indigo-500", "sky-500", "teal-500", "cyan-500",
}

const fallbackHex = "#d1d5db"

func (c Color) Valid() bool {
	_, ok := palette[c]
	return ok
}

// Hex returns the rendering color, or a neutral gray for unknown names.
func (c Color) Hex() string {
	if h, ok := palette[c]; ok {
		return h
	}
	return fallbackHex
}
