package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCatalog() *Catalog {
	c := NewCatalog()
	c.Centers["010300"] = Area{Code: "010300", Name: "関東甲信地方", Level: LevelCenter}
	c.Centers["010100"] = Area{Code: "010100", Name: "北海道地方", Level: LevelCenter}
	c.Offices["130000"] = Area{Code: "130000", Name: "東京都", ParentCode: "010300", Level: LevelOffice}
	c.Offices["080000"] = Area{Code: "080000", Name: "茨城県", ParentCode: "010300", Level: LevelOffice}
	c.Offices["460040"] = Area{Code: "460040", Name: "奄美地方", Level: LevelOffice}
	c.Class10s["130010"] = Area{Code: "130010", Name: "東京地方", ParentCode: "130000", Level: LevelClass10}
	return c
}

func TestCatalogNavigation(t *testing.T) {
	c := sampleCatalog()

	regions := c.Regions()
	require.Len(t, regions, 2)
	assert.Equal(t, "010100", regions[0].Code)

	prefs := c.Prefectures("010300")
	require.Len(t, prefs, 2)
	assert.Equal(t, "080000", prefs[0].Code)
	assert.Equal(t, "130000", prefs[1].Code)

	assert.Empty(t, c.Prefectures(""), "parentless offices are not prefectures")

	subs := c.SubAreas("130000")
	require.Len(t, subs, 1)
	assert.Equal(t, "東京地方", subs[0].Name)

	assert.Len(t, c.All(), 6)
}

func TestPrefectureCode(t *testing.T) {
	c := sampleCatalog()
	c.Offices["14000"] = Area{Code: "14000", Name: "short", ParentCode: "010300", Level: LevelOffice}

	code, err := c.PrefectureCode("130000")
	require.NoError(t, err)
	assert.Equal(t, "130000", code)

	code, err = c.PrefectureCode("14000")
	require.NoError(t, err)
	assert.Equal(t, "014000", code)

	_, err = c.PrefectureCode("460040")
	assert.ErrorIs(t, err, ErrUnknownArea)

	_, err = c.PrefectureCode("999999")
	assert.ErrorIs(t, err, ErrUnknownArea)
}
