package seed

import (
	"embed"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/learnit-backend/internal/data/repos"
	types "github.com/yungbote/learnit-backend/internal/domain"
	"github.com/yungbote/learnit-backend/internal/domain/billing"
	"github.com/yungbote/learnit-backend/internal/domain/learning"
	"github.com/yungbote/learnit-backend/internal/platform/dbctx"
	"github.com/yungbote/learnit-backend/internal/platform/logger"
)

// catalogEnv points at a YAML file that replaces the embedded catalog.
const catalogEnv = "SEED_CATALOG_YAML"

//go:embed catalog.yaml
var catalogFS embed.FS

type Catalog struct {
	Version int          `yaml:"version"`
	Tiers   []TierSpec   `yaml:"tiers"`
	Modules []ModuleSpec `yaml:"modules"`
	Paths   []PathSpec   `yaml:"paths"`
}

type TierSpec struct {
	Name        string   `yaml:"name"`
	DisplayName string   `yaml:"display_name"`
	Price       int      `yaml:"price"`
	ModuleLimit *int     `yaml:"module_limit"`
	Features    []string `yaml:"features"`
}

type ModuleSpec struct {
	Slug           string        `yaml:"slug"`
	Title          string        `yaml:"title"`
	Description    string        `yaml:"description"`
	Category       string        `yaml:"category"`
	EstimatedHours int           `yaml:"estimated_hours"`
	Order          int           `yaml:"order"`
	Prerequisites  []string      `yaml:"prerequisites"`
	Chapters       []ChapterSpec `yaml:"chapters"`
}

type ChapterSpec struct {
	Title       string       `yaml:"title"`
	Description string       `yaml:"description"`
	Lessons     []LessonSpec `yaml:"lessons"`
}

type LessonSpec struct {
	Title      string `yaml:"title"`
	Content    string `yaml:"content"`
	VideoURL   string `yaml:"video_url"`
	Minutes    int    `yaml:"minutes"`
	Difficulty string `yaml:"difficulty"`
}

type PathSpec struct {
	Slug        string   `yaml:"slug"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Order       int      `yaml:"order"`
	Modules     []string `yaml:"modules"`
}

// Load reads the catalog from SEED_CATALOG_YAML when set, else the embedded copy.
func Load() (*Catalog, error) {
	var (
		data []byte
		err  error
	)
	if p := strings.TrimSpace(os.Getenv(catalogEnv)); p != "" {
		data, err = os.ReadFile(p)
	} else {
		data, err = catalogFS.ReadFile("catalog.yaml")
	}
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	slugs := map[string]bool{}
	for _, t := range c.Tiers {
		switch billing.TierName(t.Name) {
		case billing.TierBasic, billing.TierPro, billing.TierPremium:
		default:
			return fmt.Errorf("catalog: unknown tier %q", t.Name)
		}
	}
	for _, m := range c.Modules {
		if m.Slug == "" || m.Title == "" {
			return fmt.Errorf("catalog: module needs slug and title")
		}
		if !learning.Category(m.Category).Valid() {
			return fmt.Errorf("catalog: module %s: bad category %q", m.Slug, m.Category)
		}
		if slugs[m.Slug] {
			return fmt.Errorf("catalog: duplicate module slug %s", m.Slug)
		}
		slugs[m.Slug] = true
		for _, ch := range m.Chapters {
			for _, l := range ch.Lessons {
				if l.Difficulty != "" && !learning.Difficulty(l.Difficulty).Valid() {
					return fmt.Errorf("catalog: lesson %q: bad difficulty %q", l.Title, l.Difficulty)
				}
			}
		}
	}
	for _, m := range c.Modules {
		for _, p := range m.Prerequisites {
			if !slugs[p] {
				return fmt.Errorf("catalog: module %s: unknown prerequisite %s", m.Slug, p)
			}
		}
	}
	for _, p := range c.Paths {
		for _, s := range p.Modules {
			if !slugs[s] {
				return fmt.Errorf("catalog: path %s: unknown module %s", p.Slug, s)
			}
		}
	}
	return nil
}

type Result struct {
	Tiers   int `json:"tiers"`
	Modules int `json:"modules"`
	Paths   int `json:"paths"`
}

type Seeder struct {
	db    *gorm.DB
	log   *logger.Logger
	repos repos.Set
}

func NewSeeder(db *gorm.DB, baseLog *logger.Logger, r repos.Set) *Seeder {
	return &Seeder{db: db, log: baseLog.With("component", "Seeder"), repos: r}
}

// Tiers upserts the subscription tiers only.
func (s *Seeder) Tiers(dbc dbctx.Context, c *Catalog) (int, error) {
	tiers := make([]*types.SubscriptionTier, 0, len(c.Tiers))
	for _, t := range c.Tiers {
		tiers = append(tiers, &types.SubscriptionTier{
			Name:        billing.TierName(t.Name),
			DisplayName: t.DisplayName,
			ModuleLimit: t.ModuleLimit,
			Price:       t.Price,
			Features:    datatypes.JSONSlice[string](t.Features),
		})
	}
	if err := s.repos.Tier.Upsert(dbc, tiers); err != nil {
		return 0, err
	}
	return len(tiers), nil
}

// Run upserts tiers and inserts any catalog module or path whose slug is not
// present yet. Existing content is never modified.
func (s *Seeder) Run(dbc dbctx.Context, c *Catalog) (*Result, error) {
	res := &Result{}
	err := s.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbc.WithTx(tx)
		n, err := s.Tiers(inner, c)
		if err != nil {
			return err
		}
		res.Tiers = n

		bySlug := map[string]uuid.UUID{}
		for _, ms := range c.Modules {
			existing, err := s.repos.Module.GetBySlug(inner, ms.Slug)
			if err != nil {
				return err
			}
			if existing != nil {
				bySlug[ms.Slug] = existing.ID
				continue
			}
			id, err := s.createModule(inner, ms)
			if err != nil {
				return fmt.Errorf("seed module %s: %w", ms.Slug, err)
			}
			bySlug[ms.Slug] = id
			res.Modules++

			for _, pre := range ms.Prerequisites {
				if err := s.repos.Path.AddPrerequisite(inner, id, bySlug[pre]); err != nil {
					return fmt.Errorf("seed prerequisite %s -> %s: %w", ms.Slug, pre, err)
				}
			}
		}

		for _, ps := range c.Paths {
			existing, err := s.repos.Path.GetBySlug(inner, ps.Slug)
			if err != nil {
				return err
			}
			if existing != nil {
				continue
			}
			ids := make(datatypes.JSONSlice[uuid.UUID], 0, len(ps.Modules))
			for _, slug := range ps.Modules {
				ids = append(ids, bySlug[slug])
			}
			if err := s.repos.Path.Create(inner, &types.LearningPath{
				Title:       ps.Title,
				Slug:        ps.Slug,
				Description: ps.Description,
				ModuleIDs:   ids,
				Order:       ps.Order,
			}); err != nil {
				return fmt.Errorf("seed path %s: %w", ps.Slug, err)
			}
			res.Paths++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Seed complete", "tiers", res.Tiers, "modules", res.Modules, "paths", res.Paths)
	return res, nil
}

func (s *Seeder) createModule(dbc dbctx.Context, ms ModuleSpec) (uuid.UUID, error) {
	m := &types.Module{
		Title:          ms.Title,
		Slug:           ms.Slug,
		Description:    ms.Description,
		Category:       learning.Category(ms.Category),
		EstimatedHours: ms.EstimatedHours,
		Order:          ms.Order,
		IsPublished:    true,
	}
	if err := s.repos.Module.Create(dbc, m); err != nil {
		return uuid.Nil, err
	}
	for _, cs := range ms.Chapters {
		ch := &types.Chapter{ModuleID: m.ID, Title: cs.Title, Description: cs.Description}
		if err := s.repos.Chapter.Append(dbc, ch); err != nil {
			return uuid.Nil, err
		}
		for _, ls := range cs.Lessons {
			l := &types.Lesson{
				ChapterID:        ch.ID,
				Title:            ls.Title,
				Content:          strings.TrimSpace(ls.Content),
				VideoURL:         ls.VideoURL,
				EstimatedMinutes: ls.Minutes,
				Difficulty:       learning.Difficulty(ls.Difficulty),
			}
			if err := s.repos.Lesson.Append(dbc, l); err != nil {
				return uuid.Nil, err
			}
		}
	}
	return m.ID, nil
}
