package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInt(t *testing.T) {
	require.Equal(t, "", Int{}.String())
	require.Nil(t, Int{}.Ptr())

	v := KnownInt(129995)
	require.Equal(t, "129995", v.String())
	require.Equal(t, int64(129995), *v.Ptr())
	require.Equal(t, "0", KnownInt(0).String())
}

func TestSiteConfigPageURL(t *testing.T) {
	site := SiteConfig{URLTemplate: "https://cars.example/search?page={page}&sort=price"}
	require.Equal(t, "https://cars.example/search?page=7&sort=price", site.PageURL(7))
	require.True(t, site.IsEnabled())

	off := false
	site.Enabled = &off
	require.False(t, site.IsEnabled())
}

func TestTerminationFailed(t *testing.T) {
	require.False(t, TerminationExhausted.Failed())
	require.False(t, TerminationCapped.Failed())
	require.True(t, TerminationAborted.Failed())
	require.True(t, TerminationDeadline.Failed())
	require.True(t, TerminationFailed.Failed())
}
