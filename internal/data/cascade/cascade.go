package cascade

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/learnit-backend/internal/domain/billing"
	"github.com/yungbote/learnit-backend/internal/domain/engagement"
	"github.com/yungbote/learnit-backend/internal/domain/learning"
	"github.com/yungbote/learnit-backend/internal/domain/user"
)

type Kind string

const (
	User         Kind = "user"
	Profile      Kind = "profile"
	Subscription Kind = "subscription"
	Enrollment   Kind = "enrollment"
	Progress     Kind = "progress"
	Session      Kind = "session"
	Achievement  Kind = "achievement"
	Notification Kind = "notification"
	Module       Kind = "module"
	Chapter      Kind = "chapter"
	Lesson       Kind = "lesson"
	Prerequisite Kind = "prerequisite"
)

// ErrRootNotFound is returned when none of the root ids exist.
var ErrRootNotFound = errors.New("cascade: root not found")

const chunkSize = 500

// Edge says rows of Child are owned by the Parent row whose id is in Column.
type Edge struct {
	Parent Kind
	Child  Kind
	Column string
}

// Graph is an ownership graph over persisted models. Deleting a node deletes
// everything reachable from it, children first.
type Graph struct {
	order  []Kind
	models map[Kind]any
	edges  []Edge
}

func New() *Graph {
	return &Graph{models: map[Kind]any{}}
}

// Node registers a kind and the model used to query its table.
func (g *Graph) Node(kind Kind, model any) *Graph {
	if _, ok := g.models[kind]; !ok {
		g.order = append(g.order, kind)
	}
	g.models[kind] = model
	return g
}

// Own records that child.column references parent.id.
func (g *Graph) Own(parent, child Kind, column string) *Graph {
	g.edges = append(g.edges, Edge{Parent: parent, Child: child, Column: column})
	return g
}

// Ownership is the platform's aggregate graph: users own their learner
// state, modules own their content and the learner rows that point at it.
func Ownership() *Graph {
	return New().
		Node(User, &user.User{}).
		Node(Profile, &user.Profile{}).
		Node(Subscription, &billing.UserSubscription{}).
		Node(Module, &learning.Module{}).
		Node(Chapter, &learning.Chapter{}).
		Node(Lesson, &learning.Lesson{}).
		Node(Prerequisite, &learning.ModulePrerequisite{}).
		Node(Enrollment, &learning.Enrollment{}).
		Node(Progress, &learning.UserProgress{}).
		Node(Session, &learning.LearningSession{}).
		Node(Achievement, &engagement.Achievement{}).
		Node(Notification, &engagement.Notification{}).
		Own(User, Profile, "user_id").
		Own(User, Subscription, "user_id").
		Own(User, Enrollment, "user_id").
		Own(User, Progress, "user_id").
		Own(User, Session, "user_id").
		Own(User, Achievement, "user_id").
		Own(User, Notification, "user_id").
		Own(Module, Chapter, "module_id").
		Own(Module, Enrollment, "module_id").
		Own(Module, Session, "module_id").
		Own(Module, Prerequisite, "module_id").
		Own(Module, Prerequisite, "prerequisite_id").
		Own(Chapter, Lesson, "chapter_id").
		Own(Lesson, Progress, "lesson_id").
		Own(Lesson, Session, "lesson_id")
}

// Plan returns the kinds reachable from root in dependency order, owners
// before the rows they own.
func (g *Graph) Plan(root Kind) ([]Kind, error) {
	if _, ok := g.models[root]; !ok {
		return nil, fmt.Errorf("cascade: unknown kind %q", root)
	}
	reach := map[Kind]bool{root: true}
	queue := []Kind{root}
	for len(queue) > 0 {
		k := queue[0]
		queue = queue[1:]
		for _, e := range g.edges {
			if e.Parent == k && !reach[e.Child] {
				reach[e.Child] = true
				queue = append(queue, e.Child)
			}
		}
	}

	indeg := map[Kind]int{}
	for _, e := range g.edges {
		if reach[e.Parent] && reach[e.Child] && e.Parent != e.Child {
			indeg[e.Child]++
		}
	}
	var plan []Kind
	done := map[Kind]bool{}
	for len(plan) < len(reach) {
		progressed := false
		for _, k := range g.order {
			if !reach[k] || done[k] || indeg[k] > 0 {
				continue
			}
			done[k] = true
			plan = append(plan, k)
			progressed = true
			for _, e := range g.edges {
				if e.Parent == k && reach[e.Child] && e.Parent != e.Child {
					indeg[e.Child]--
				}
			}
		}
		if !progressed {
			return nil, fmt.Errorf("cascade: ownership cycle below %q", root)
		}
	}
	return plan, nil
}

// Result is the number of rows deleted per kind.
type Result map[Kind]int64

// Delete removes the root rows and everything they own. It must run inside
// the caller's transaction so a failure leaves nothing half-deleted.
func (g *Graph) Delete(tx *gorm.DB, root Kind, ids []uuid.UUID) (Result, error) {
	plan, err := g.Plan(root)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, ErrRootNotFound
	}

	found, err := pluck(tx, g.models[root], "id", ids)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, ErrRootNotFound
	}

	owned := map[Kind][]uuid.UUID{root: found}
	for _, k := range plan[1:] {
		seen := map[uuid.UUID]bool{}
		var set []uuid.UUID
		for _, e := range g.edges {
			if e.Child != k || len(owned[e.Parent]) == 0 {
				continue
			}
			rows, err := pluck(tx, g.models[k], e.Column, owned[e.Parent])
			if err != nil {
				return nil, fmt.Errorf("cascade %s via %s.%s: %w", k, e.Parent, e.Column, err)
			}
			for _, id := range rows {
				if !seen[id] {
					seen[id] = true
					set = append(set, id)
				}
			}
		}
		owned[k] = set
	}

	res := Result{}
	for i := len(plan) - 1; i >= 0; i-- {
		k := plan[i]
		for _, part := range chunks(owned[k]) {
			del := tx.Where("id IN ?", part).Delete(g.models[k])
			if del.Error != nil {
				return nil, fmt.Errorf("cascade delete %s: %w", k, del.Error)
			}
			res[k] += del.RowsAffected
		}
	}
	return res, nil
}

func pluck(tx *gorm.DB, model any, column string, in []uuid.UUID) ([]uuid.UUID, error) {
	var out []uuid.UUID
	for _, part := range chunks(in) {
		var ids []uuid.UUID
		if err := tx.Model(model).Where(column+" IN ?", part).Pluck("id", &ids).Error; err != nil {
			return nil, err
		}
		out = append(out, ids...)
	}
	return out, nil
}

func chunks(ids []uuid.UUID) [][]uuid.UUID {
	var out [][]uuid.UUID
	for len(ids) > chunkSize {
		out = append(out, ids[:chunkSize])
		ids = ids[chunkSize:]
	}
	if len(ids) > 0 {
		out = append(out, ids)
	}
	return out
}
