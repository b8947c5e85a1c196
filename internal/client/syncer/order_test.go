package syncer

import (
	"testing"

	"github.com/dmitrijs2005/docme/internal/client/models"
	"github.com/stretchr/testify/assert"
)

func ref(s string) *string { return &s }

func TestParentsFirst(t *testing.T) {
	in := []models.Folder{
		{ID: "grandchild", ParentID: ref("child")},
		{ID: "child", ParentID: ref("root")},
		{ID: "orphan", ParentID: ref("missing")},
		{ID: "root"},
	}

	out := parentsFirst(in,
		func(f models.Folder) string { return f.ID },
		func(f models.Folder) *string { return f.ParentID })

	pos := map[string]int{}
	for i, f := range out {
		pos[f.ID] = i
	}
	assert.Less(t, pos["root"], pos["child"])
	assert.Less(t, pos["child"], pos["grandchild"])
	assert.Len(t, out, 4)
	assert.Equal(t, "grandchild", in[0].ID, "input is not reordered")
}

func TestParentsFirst_LoopTerminates(t *testing.T) {
	in := []models.Folder{
		{ID: "a", ParentID: ref("b")},
		{ID: "b", ParentID: ref("a")},
	}
	out := parentsFirst(in,
		func(f models.Folder) string { return f.ID },
		func(f models.Folder) *string { return f.ParentID })
	assert.Len(t, out, 2)
}
