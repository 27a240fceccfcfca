package types

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestParseFileType(t *testing.T) {
	for in, want := range map[string]FileType{"html": FileTypeHTML, " SVG ": FileTypeSVG, "Html": FileTypeHTML} {
		got, err := ParseFileType(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got)
	}

	for _, in := range []string{"", "png", "htm"} {
		_, err := ParseFileType(in)
		require.ErrorIs(t, err, ErrInvalidFileType, in)
	}
}

func TestColorArgsExact(t *testing.T) {
	p := ColorParameters{Hue1: 10, Hue2: 200, Hue3: 300}
	require.NoError(t, p.Validate())
	require.Equal(t, []any{big.NewInt(10), big.NewInt(200), big.NewInt(300)}, p.Args())
}

func TestColorArgs_PropertyBased(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		hue := rapid.IntRange(MinHue, MaxHue)
		p := ColorParameters{Hue1: hue.Draw(t, "h1"), Hue2: hue.Draw(t, "h2"), Hue3: hue.Draw(t, "h3")}

		require.NoError(t, p.Validate())

		args := p.Args()
		require.Len(t, args, 3)

		for i, want := range []int{p.Hue1, p.Hue2, p.Hue3} {
			got, ok := args[i].(*big.Int)
			require.True(t, ok)
			require.Equal(t, int64(want), got.Int64())
		}
	})
}

func TestColorValidateRange(t *testing.T) {
	require.ErrorIs(t, ColorParameters{Hue1: -1}.Validate(), ErrHueOutOfRange)
	require.ErrorIs(t, ColorParameters{Hue3: 361}.Validate(), ErrHueOutOfRange)
	require.NoError(t, ColorParameters{Hue1: 0, Hue2: 360, Hue3: 180}.Validate())
}

func TestColorWith(t *testing.T) {
	p := ColorParameters{}.With(1, 5).With(2, 6).With(3, 7).With(4, 8)
	require.Equal(t, ColorParameters{Hue1: 5, Hue2: 6, Hue3: 7}, p)
}

func TestCollectionOrderAndURL(t *testing.T) {
	a := Collection{Name: "My Helix  Set", BlockNumber: 5, LogIndex: 1}
	b := Collection{BlockNumber: 5, LogIndex: 2}
	c := Collection{BlockNumber: 6}

	require.True(t, b.Newer(a))
	require.True(t, c.Newer(b))
	require.False(t, a.Newer(a))

	require.Equal(t, "https://testnets.opensea.io/collection/my-helix-set", a.MarketplaceURL("https://testnets.opensea.io/"))
}
