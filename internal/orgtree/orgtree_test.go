package orgtree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/kpi-pulse/internal/model"
)

func org(id int, name string, level int, parentID int) model.Organization {
	o := model.Organization{ID: id, Name: name, Level: level, ParentID: parentID}
	if level == 2 {
		o.Class = model.ClassifyName(name)
	}
	return o
}

func TestOrderedTraversal(t *testing.T) {
	orgs := []model.Organization{
		org(11, "생산1팀", 3, 10),
		org(20, "B 팀", 2, 1),
		org(1, "전사", 1, 0),
		org(10, "A 본부", 2, 1),
		org(12, "생산2팀", 3, 10),
	}

	got := Ordered(orgs)
	require.Len(t, got, 5)

	ids := make([]int, len(got))
	for i, e := range got {
		ids[i] = e.ID
	}
	// Root, division, its teams ID-ascending, then the direct-report team.
	assert.Equal(t, []int{1, 10, 11, 12, 20}, ids)

	assert.Equal(t, 1, got[0].Level)
	assert.Equal(t, "A 본부", got[1].Name)
	assert.Equal(t, 3, got[2].Level)
	assert.Equal(t, "B 팀", got[4].Name)
}

func TestOrderedMultipleDivisionsGroupTeams(t *testing.T) {
	orgs := []model.Organization{
		org(1, "전사", 1, 0),
		org(3, "나중본부", 2, 1),
		org(2, "먼저본부", 2, 1),
		org(31, "나중1팀", 3, 3),
		org(21, "먼저1팀", 3, 2),
		org(22, "먼저2팀", 3, 2),
	}

	got := Ordered(orgs)
	ids := make([]int, len(got))
	for i, e := range got {
		ids[i] = e.ID
	}
	// Both divisions first (ID order), then their teams grouped per division.
	assert.Equal(t, []int{1, 2, 3, 21, 22, 31}, ids)
}

func TestOrderedExcludesAmbiguousLevel2(t *testing.T) {
	orgs := []model.Organization{
		org(1, "전사", 1, 0),
		org(2, "영업본부", 2, 1),
		org(9, "연구소", 2, 1), // neither marker: unknown class
	}

	got := Ordered(orgs)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].ID)
	assert.Equal(t, 2, got[1].ID)
}

func TestBuildTree(t *testing.T) {
	orgs := []model.Organization{
		org(1, "전사", 1, 0),
		org(10, "영업본부", 2, 1),
		org(20, "전략기획팀", 2, 1),
		org(11, "영업1팀", 3, 10),
		org(12, "영업2팀", 3, 10),
	}

	tree, ok := BuildTree(orgs)
	require.True(t, ok)
	assert.Equal(t, "전사", tree.Name)
	assert.Equal(t, 1, tree.Level)

	require.Len(t, tree.Children, 2)
	assert.Equal(t, "영업본부", tree.Children[0].Name)
	require.Len(t, tree.Children[0].Children, 2)
	assert.Equal(t, "영업1팀", tree.Children[0].Children[0].Name)

	assert.Equal(t, "전략기획팀", tree.Children[1].Name)
	assert.Empty(t, tree.Children[1].Children)
}

func TestBuildTreeNoRoot(t *testing.T) {
	_, ok := BuildTree([]model.Organization{org(10, "영업본부", 2, 1)})
	assert.False(t, ok)
}
