package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFigure_Triangle(t *testing.T) {
	figure, err := NewFigure(KindTriangle, Dimensions{A: 3, B: 4, C: 5})
	require.NoError(t, err)
	require.Equal(t, KindTriangle, figure.Kind())
	assert.InDelta(t, 6.0, figure.Area(), 1e-9)
}

func TestTriangleValidate_SidePermutationsAgree(t *testing.T) {
	sides := [][3]float64{
		{3, 4, 5}, {3, 5, 4}, {4, 3, 5}, {4, 5, 3}, {5, 3, 4}, {5, 4, 3},
	}
	for _, s := range sides {
		_, err := NewFigure(KindTriangle, Dimensions{A: s[0], B: s[1], C: s[2]})
		require.NoError(t, err, "sides %v", s)
	}

	degenerate := [][3]float64{
		{1, 2, 3}, {2, 1, 3}, {3, 2, 1}, {1, 3, 2}, {2, 3, 1}, {3, 1, 2},
	}
	for _, s := range degenerate {
		_, err := NewFigure(KindTriangle, Dimensions{A: s[0], B: s[1], C: s[2]})
		require.ErrorIs(t, err, ErrFigureInvalid, "sides %v", s)
	}
}

func TestTriangleValidate_RejectsNonPositiveSides(t *testing.T) {
	_, err := NewFigure(KindTriangle, Dimensions{A: 0, B: 4, C: 4})
	require.ErrorIs(t, err, ErrFigureInvalid)

	_, err = NewFigure(KindTriangle, Dimensions{A: 3, B: -4, C: 5})
	require.ErrorIs(t, err, ErrFigureInvalid)
}

func TestTriangleValidate_RejectsLongSide(t *testing.T) {
	_, err := NewFigure(KindTriangle, Dimensions{A: 1, B: 1, C: 10})
	require.ErrorIs(t, err, ErrFigureInvalid)
}

func TestNewFigure_Square(t *testing.T) {
	figure, err := NewFigure(KindSquare, Dimensions{A: 3})
	require.NoError(t, err)
	assert.InDelta(t, 9.0, figure.Area(), 1e-9)
}

func TestNewFigure_SquareAcceptsMatchingSecondSide(t *testing.T) {
	figure, err := NewFigure(KindSquare, Dimensions{A: 2.5, B: 2.5 + 1e-12})
	require.NoError(t, err)
	assert.InDelta(t, 6.25, figure.Area(), 1e-9)
}

func TestNewFigure_SquareRejectsMismatchedSides(t *testing.T) {
	_, err := NewFigure(KindSquare, Dimensions{A: 2, B: 3})
	require.ErrorIs(t, err, ErrFigureInvalid)
}

func TestNewFigure_SquareRejectsNonPositiveSide(t *testing.T) {
	_, err := NewFigure(KindSquare, Dimensions{A: 0})
	require.ErrorIs(t, err, ErrFigureInvalid)

	_, err = NewFigure(KindSquare, Dimensions{A: -1})
	require.ErrorIs(t, err, ErrFigureInvalid)
}

func TestNewFigure_Circle(t *testing.T) {
	figure, err := NewFigure(KindCircle, Dimensions{A: 2})
	require.NoError(t, err)
	assert.InDelta(t, 4*math.Pi, figure.Area(), 1e-9)
}

func TestNewFigure_CircleRejectsNonPositiveRadius(t *testing.T) {
	_, err := NewFigure(KindCircle, Dimensions{A: -1})
	require.ErrorIs(t, err, ErrFigureInvalid)
}

func TestNewFigure_RejectsNonFiniteDimensions(t *testing.T) {
	nan := math.NaN()
	inf := math.Inf(1)
	cases := []struct {
		kind Kind
		dims Dimensions
	}{
		{KindTriangle, Dimensions{A: nan, B: 4, C: 5}},
		{KindTriangle, Dimensions{A: 3, B: inf, C: 5}},
		{KindSquare, Dimensions{A: nan}},
		{KindSquare, Dimensions{A: 2, B: nan}},
		{KindSquare, Dimensions{A: inf}},
		{KindCircle, Dimensions{A: nan}},
		{KindCircle, Dimensions{A: inf}},
	}
	for _, tc := range cases {
		_, err := NewFigure(tc.kind, tc.dims)
		require.ErrorIs(t, err, ErrFigureInvalid, "%s %+v", tc.kind, tc.dims)
	}
}

func TestNewFigure_RejectsAreaOverflow(t *testing.T) {
	// Finite measurements whose area would overflow float64.
	_, err := NewFigure(KindTriangle, Dimensions{A: 1e308, B: 1e308, C: 1e308})
	require.ErrorIs(t, err, ErrFigureInvalid)

	_, err = NewFigure(KindSquare, Dimensions{A: 1e200})
	require.ErrorIs(t, err, ErrFigureInvalid)

	_, err = NewFigure(KindCircle, Dimensions{A: 1e200})
	require.ErrorIs(t, err, ErrFigureInvalid)
}

func TestNewFigure_UnknownKind(t *testing.T) {
	_, err := NewFigure(Kind("hexagon"), Dimensions{A: 1})
	require.ErrorIs(t, err, ErrUnknownFigureType)
}

func TestParseKind(t *testing.T) {
	kind, err := ParseKind("circle")
	require.NoError(t, err)
	require.Equal(t, KindCircle, kind)

	_, err = ParseKind("rhombus")
	require.ErrorIs(t, err, ErrUnknownFigureType)
}
