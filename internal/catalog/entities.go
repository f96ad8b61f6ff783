package catalog

import (
	"context"

	"github.com/rotisserie/eris"
	"gorm.io/gorm"

	"dndtools/app/internal/filter"
)

// entity binds a filter set to the loaders of its list and detail views.
type entity struct {
	set    *filter.Set
	list   func(ctx context.Context, db *gorm.DB, q *filter.Query, page filter.Page) (any, error)
	detail func(ctx context.Context, db *gorm.DB, slug string) (any, bool, error)
}

// loader reads rows of T with their relations.
type loader[T any] struct {
	table   string
	preload func(*gorm.DB) *gorm.DB
	finish  func(*T)
}

func (l loader[T]) scope(db *gorm.DB) *gorm.DB {
	if l.preload == nil {
		return db
	}
	return l.preload(db)
}

func (l loader[T]) list(ctx context.Context, db *gorm.DB, q *filter.Query, page filter.Page) (any, error) {
	items := make([]T, 0, page.Size)
	if err := q.Find(ctx, db, page, &items, l.scope); err != nil {
		return nil, err
	}
	if l.finish != nil {
		for i := range items {
			l.finish(&items[i])
		}
	}
	return items, nil
}

func (l loader[T]) detail(ctx context.Context, db *gorm.DB, slug string) (any, bool, error) {
	var item T
	err := l.scope(db.WithContext(ctx)).Where(l.table+".slug = ?", slug).First(&item).Error
	if err != nil {
		if eris.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, eris.Wrapf(err, "loading %s %s", l.table, slug)
	}
	if l.finish != nil {
		l.finish(&item)
	}
	return &item, true, nil
}

func preloads(relations ...string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		for _, relation := range relations {
			db = db.Preload(relation)
		}
		return db
	}
}

func byName(db *gorm.DB) *gorm.DB {
	return db.Order("name").Order("id")
}

func spellLoader() loader[Spell] {
	return loader[Spell]{
		table: TableSpells,
		preload: func(db *gorm.DB) *gorm.DB {
			return db.
				Preload("Rulebook.Edition").
				Preload("School").
				Preload("SubSchool").
				Preload("Descriptors", byName).
				Preload("ClassLevels.CharacterClass").
				Preload("DomainLevels.Domain").
				Preload("VerifiedAuthor")
		},
	}
}

func itemLoader() loader[Item] {
	return loader[Item]{
		table: TableItems,
		preload: preloads(
			"Rulebook.Edition", "BodySlot", "Properties", "Aura", "AuraSchools",
			"Activation", "Requirements.Spell", "Requirements.Feat",
		),
		finish: func(item *Item) { renderRequirements(item.Requirements) },
	}
}

func featLoader() loader[Feat] {
	return loader[Feat]{
		table: TableFeats,
		preload: func(db *gorm.DB) *gorm.DB {
			return db.
				Preload("Rulebook.Edition").
				Preload("Categories", byName).
				Preload("Prerequisites.Special").
				Preload("Prerequisites.Skill").
				Preload("Prerequisites.RequiredFeat")
		},
		finish: func(feat *Feat) { renderPrerequisites(feat.Prerequisites) },
	}
}

func raceLoader() loader[Race] {
	return loader[Race]{
		table: TableRaces,
		preload: func(db *gorm.DB) *gorm.DB {
			return db.
				Preload("Rulebook.Edition").
				Preload("RaceType").
				Preload("Size").
				Preload("Speeds", func(tx *gorm.DB) *gorm.DB { return tx.Order("position").Order("id") }).
				Preload("Speeds.Type").
				Preload("FavoredClasses.CharacterClass").
				Preload("AutomaticLanguages", byName).
				Preload("BonusLanguages", byName)
		},
	}
}

func monsterLoader() loader[Monster] {
	return loader[Monster]{
		table: TableMonsters,
		preload: preloads(
			"Rulebook.Edition", "Type", "Subtypes", "Size", "Speeds.Type", "Feats.Feat", "Skills.Skill",
		),
	}
}

func classVariantLoader() loader[CharacterClassVariant] {
	return loader[CharacterClassVariant]{
		table:   TableClassVariants,
		preload: preloads("CharacterClass", "Rulebook.Edition"),
	}
}

func classLoader() loader[CharacterClass] {
	return loader[CharacterClass]{
		table: TableCharacterClasses,
		preload: preloads(
			"Variants.Rulebook.Edition", "Variants.ClassSkills", "Variants.RequiredFeats.Feat",
			"Variants.RequiredRaces.Race", "Variants.RequiredSkills.Skill",
		),
	}
}

func domainLoader() loader[Domain] {
	return loader[Domain]{
		table:   TableDomains,
		preload: preloads("Variants.Rulebook", "Variants.Deities", "Variants.OtherDeities"),
	}
}

func plainLoader[T any](table string, relations ...string) loader[T] {
	return loader[T]{table: table, preload: preloads(relations...)}
}

func newEntity[T any](set *filter.Set, l loader[T]) entity {
	return entity{set: set, list: l.list, detail: l.detail}
}

// buildEntities pairs every filter set with its loaders.
func buildEntities(sets map[string]*filter.Set, adminSpells *filter.Set) (map[string]entity, error) {
	loaders := map[string]func(*filter.Set) entity{
		EntitySpells:      func(s *filter.Set) entity { return newEntity(s, spellLoader()) },
		EntityItems:       func(s *filter.Set) entity { return newEntity(s, itemLoader()) },
		EntityLanguages:   func(s *filter.Set) entity { return newEntity(s, plainLoader[Language](TableLanguages)) },
		EntityRulebooks:   func(s *filter.Set) entity { return newEntity(s, plainLoader[Rulebook](TableRulebooks, "Edition")) },
		EntityFeats:       func(s *filter.Set) entity { return newEntity(s, featLoader()) },
		EntityDomains:     func(s *filter.Set) entity { return newEntity(s, domainLoader()) },
		EntityDescriptors: func(s *filter.Set) entity { return newEntity(s, plainLoader[SpellDescriptor](TableSpellDescriptors)) },
		EntitySkills:      func(s *filter.Set) entity { return newEntity(s, plainLoader[Skill](TableSkills)) },
		EntityRules:       func(s *filter.Set) entity { return newEntity(s, plainLoader[Rule](TableRules, "Rulebook")) },
		EntityDeities:     func(s *filter.Set) entity { return newEntity(s, plainLoader[Deity](TableDeities)) },
		EntityMonsters:    func(s *filter.Set) entity { return newEntity(s, monsterLoader()) },
		EntityRaces:       func(s *filter.Set) entity { return newEntity(s, raceLoader()) },
		EntityRaceTypes:   func(s *filter.Set) entity { return newEntity(s, plainLoader[RaceType](TableRaceTypes)) },
		EntityClasses: func(s *filter.Set) entity {
			// Variants are listed; the detail view is the class with all its variants.
			return entity{set: s, list: classVariantLoader().list, detail: classLoader().detail}
		},
	}

	entities := make(map[string]entity, len(sets)+1)
	for name, set := range sets {
		build, ok := loaders[name]
		if !ok {
			return nil, eris.Errorf("no loader for filter set %s", name)
		}
		entities[name] = build(set)
	}
	if adminSpells != nil {
		entities[adminSpells.Name] = newEntity(adminSpells, spellLoader())
	}
	return entities, nil
}
