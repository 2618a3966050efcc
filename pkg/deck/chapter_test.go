package deck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOutline() *ChapterOutline {
	return &ChapterOutline{
		DocumentName: "linear-algebra",
		TotalSlides:  30,
		Chapters: []Chapter{
			{ChapterID: "ch-1", Title: "Vectors", Order: 0, StartSlide: 0, EndSlide: 9},
			{ChapterID: "ch-2", Title: "Matrices", Order: 1, StartSlide: 10, EndSlide: 19},
			{ChapterID: "ch-3", Title: "Eigenvalues", Order: 2, StartSlide: 20, EndSlide: 29},
		},
	}
}

func TestChapterID(t *testing.T) {
	id := ChapterID(0, "Vectors")
	assert.Equal(t, AnchorID("chapter", "0:Vectors"), id)
	assert.Len(t, id, 12)

	assert.Equal(t, id, ChapterID(0, "Vectors"), "same input, same id")
	assert.NotEqual(t, id, ChapterID(1, "Vectors"))
	assert.NotEqual(t, id, ChapterID(0, "Matrices"))
}

func TestChapterOutline_ChapterForSlide(t *testing.T) {
	o := testOutline()

	ch := o.ChapterForSlide(0)
	require.NotNil(t, ch)
	assert.Equal(t, "Vectors", ch.Title)

	ch = o.ChapterForSlide(10)
	require.NotNil(t, ch)
	assert.Equal(t, "Matrices", ch.Title)

	ch = o.ChapterForSlide(29)
	require.NotNil(t, ch)
	assert.Equal(t, "Eigenvalues", ch.Title)

	assert.Nil(t, o.ChapterForSlide(30))
	assert.Nil(t, o.ChapterForSlide(-1))
}

func TestChapterOutline_ChapterByID(t *testing.T) {
	o := testOutline()

	ch := o.ChapterByID("ch-2")
	require.NotNil(t, ch)
	assert.Equal(t, "Matrices", ch.Title)

	assert.Nil(t, o.ChapterByID("ch-99"))
}
