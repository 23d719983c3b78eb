package app

import (
	"fmt"
	"math/rand"
	"testing"

	"dcimsync/internal/domain"

	"github.com/stretchr/testify/assert"
)

func files(names ...string) []domain.RemoteFile {
	out := make([]domain.RemoteFile, 0, len(names))
	for _, name := range names {
		out = append(out, domain.RemoteFile{Dir: "100_FUJI", Name: name})
	}
	return out
}

func TestPlannerSkipsKnownFiles(t *testing.T) {
	plan := Planner{}.Plan(domain.Source{Name: "X100S"}, files("IMG_1.JPG", "IMG_2.JPG"), []string{"IMG_1.JPG"})

	assert.Equal(t, files("IMG_2.JPG"), plan.Items)
	assert.Equal(t, 2, plan.Listed)
	assert.Equal(t, 1, plan.Known)
}

func TestPlannerCollapsesDuplicates(t *testing.T) {
	listed := []domain.RemoteFile{
		{Dir: "100_FUJI", Name: "IMG_1.JPG"},
		{Dir: "101_FUJI", Name: "IMG_1.JPG"},
	}
	plan := Planner{}.Plan(domain.Source{Name: "X100S"}, listed, nil)

	assert.Len(t, plan.Items, 1)
	assert.Equal(t, "100_FUJI", plan.Items[0].Dir)
	assert.Equal(t, 1, plan.Duplicates)
}

func TestPlannerSetDifferenceProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 200; round++ {
		var history, listedNames []string
		for i := 0; i < 30; i++ {
			name := fmt.Sprintf("IMG_%d.JPG", rng.Intn(40))
			if rng.Intn(2) == 0 {
				history = append(history, name)
			} else {
				listedNames = append(listedNames, name)
			}
		}

		plan := Planner{}.Plan(domain.Source{Name: "X100S"}, files(listedNames...), history)

		inHistory := map[string]bool{}
		for _, name := range history {
			inHistory[name] = true
		}
		planned := map[string]bool{}
		for _, item := range plan.Items {
			assert.False(t, inHistory[item.Name], "planned %s which is in history", item.Name)
			planned[item.Name] = true
		}
		for _, name := range listedNames {
			if !planned[name] {
				assert.True(t, inHistory[name], "%s dropped but not in history", name)
			}
		}
	}
}
