package cards

import (
	"errors"
	"fmt"
	"strconv"
)

// Card is a catalog id. Duplicated physical cards share the same id.
type Card uint32

type Color uint32

const (
	Blue Color = iota + 1
	Green
	Red
	Yellow
)

var Colors = []Color{Blue, Green, Red, Yellow}

func (c Color) Valid() bool {
	return c >= Blue && c <= Yellow
}

func (c Color) String() string {
	switch c {
	case Blue:
		return "blue"
	case Green:
		return "green"
	case Red:
		return "red"
	case Yellow:
		return "yellow"
	default:
		return strconv.Itoa(int(c))
	}
}

type ActionKind uint8

const (
	Skip ActionKind = iota + 1
	Reverse
	DrawTwo
)

func (a ActionKind) String() string {
	switch a {
	case Skip:
		return "skip"
	case Reverse:
		return "reverse"
	case DrawTwo:
		return "draw two"
	default:
		return strconv.Itoa(int(a))
	}
}

type Category uint8

const (
	CategoryRegular Category = iota
	CategoryAction
	CategoryWild
)

const (
	WildCard     Card = 80
	WildDrawFour Card = 90

	// The size of a color block in the id space: ranks 0-9, then skip,
	// reverse and draw two.
	colorStride = 20
	colorBlock  = 13
)

var ErrInvalidCardID = errors.New("invalid card id")

// Info is the classification of a card id.
type Info struct {
	Category Category
	// Only meaningful for regular cards
	Rank int
	// Only meaningful for action cards
	Action ActionKind
	// Zero for wild cards
	Color    Color
	DrawFour bool
}

func Classify(card Card) (Info, error) {
	switch card {
	case WildCard:
		return Info{Category: CategoryWild}, nil
	case WildDrawFour:
		return Info{Category: CategoryWild, DrawFour: true}, nil
	}

	block := int(card) / colorStride
	offset := int(card) % colorStride
	if block >= len(Colors) || offset >= colorBlock {
		return Info{}, fmt.Errorf("%w: %d", ErrInvalidCardID, card)
	}

	color := Colors[block]
	if offset <= 9 {
		return Info{
			Category: CategoryRegular,
			Rank:     offset,
			Color:    color,
		}, nil
	}

	return Info{
		Category: CategoryAction,
		Action:   ActionKind(offset - 9),
		Color:    color,
	}, nil
}

// MustClassify is Classify for ids that already came out of the catalog.
func MustClassify(card Card) Info {
	info, err := Classify(card)
	if err != nil {
		panic(err)
	}
	return info
}

func IsWild(card Card) bool {
	return card == WildCard || card == WildDrawFour
}

// ColorOf returns the intrinsic color of a regular or action card. Callers
// must check for wild cards first.
func ColorOf(card Card) Color {
	info := MustClassify(card)
	if info.Category == CategoryWild {
		panic(fmt.Sprintf("ColorOf called on wild card %d", card))
	}
	return info.Color
}

func (c Card) String() string {
	info, err := Classify(c)
	if err != nil {
		return fmt.Sprintf("invalid(%d)", uint32(c))
	}

	switch info.Category {
	case CategoryRegular:
		return fmt.Sprintf("%s %d", info.Color, info.Rank)
	case CategoryAction:
		return fmt.Sprintf("%s %s", info.Color, info.Action)
	}

	if info.DrawFour {
		return "wild draw four"
	}
	return "wild"
}
