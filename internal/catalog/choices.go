package catalog

import (
	"context"
	"strconv"

	"github.com/rotisserie/eris"
	"gorm.io/gorm"

	"dndtools/app/internal/filter"
)

type slugName struct {
	Slug string
	Name string
}

func toChoices(rows []slugName) []filter.Choice {
	choices := make([]filter.Choice, 0, len(rows))
	for _, row := range rows {
		choices = append(choices, filter.Choice{Value: row.Slug, Label: row.Name})
	}
	return choices
}

// namedChoices lists every row of a Named table, by name.
func namedChoices(table string) filter.ChoiceSource {
	return func(ctx context.Context, db *gorm.DB) ([]filter.ChoiceGroup, error) {
		var rows []slugName
		err := db.WithContext(ctx).Table(table).Select("slug", "name").Order("name").Order("id").Scan(&rows).Error
		if err != nil {
			return nil, eris.Wrapf(err, "listing %s choices", table)
		}
		return []filter.ChoiceGroup{{Choices: toChoices(rows)}}, nil
	}
}

// editionChoices lists editions in the order they were catalogued.
func editionChoices(ctx context.Context, db *gorm.DB) ([]filter.ChoiceGroup, error) {
	var rows []slugName
	err := db.WithContext(ctx).Table(TableEditions).Select("slug", "name").Order("id").Scan(&rows).Error
	if err != nil {
		return nil, eris.Wrap(err, "listing edition choices")
	}
	return []filter.ChoiceGroup{{Choices: toChoices(rows)}}, nil
}

// rulebookChoices groups rulebooks under the edition they belong to.
func rulebookChoices(ctx context.Context, db *gorm.DB) ([]filter.ChoiceGroup, error) {
	var editions []Edition
	err := db.WithContext(ctx).
		Preload("Rulebooks", func(tx *gorm.DB) *gorm.DB { return tx.Order("name").Order("id") }).
		Order("id").
		Find(&editions).Error
	if err != nil {
		return nil, eris.Wrap(err, "listing rulebook choices")
	}

	groups := make([]filter.ChoiceGroup, 0, len(editions))
	for _, edition := range editions {
		group := filter.ChoiceGroup{Label: edition.Name, Choices: make([]filter.Choice, 0, len(edition.Rulebooks))}
		for _, rulebook := range edition.Rulebooks {
			group.Choices = append(group.Choices, filter.Choice{Value: rulebook.Slug, Label: rulebook.Name})
		}
		groups = append(groups, group)
	}
	return groups, nil
}

// castingClassChoices lists only classes that have a spell list of their own.
func castingClassChoices(ctx context.Context, db *gorm.DB) ([]filter.ChoiceGroup, error) {
	var rows []slugName
	err := db.WithContext(ctx).
		Table(TableCharacterClasses).
		Select("slug", "name").
		Where("id IN (SELECT character_class_id FROM " + TableSpellClassLevels + ")").
		Order("name").
		Order("id").
		Scan(&rows).Error
	if err != nil {
		return nil, eris.Wrap(err, "listing casting class choices")
	}
	return []filter.ChoiceGroup{{Choices: toChoices(rows)}}, nil
}

func spellLevelChoices() filter.ChoiceSource {
	choices := make([]filter.Choice, 0, 10)
	for level := 0; level <= 9; level++ {
		value := strconv.Itoa(level)
		choices = append(choices, filter.Choice{Value: value, Label: value})
	}
	return filter.StaticChoices(choices...)
}

var (
	itemTypeChoices = filter.StaticChoices(
		filter.Choice{Value: ItemTypeWondrous, Label: "Wondrous item"},
		filter.Choice{Value: ItemTypeArmor, Label: "Armor"},
		filter.Choice{Value: ItemTypeWeapon, Label: "Weapon"},
		filter.Choice{Value: ItemTypePotion, Label: "Potion"},
		filter.Choice{Value: ItemTypeRing, Label: "Ring"},
		filter.Choice{Value: ItemTypeRod, Label: "Rod"},
		filter.Choice{Value: ItemTypeScroll, Label: "Scroll"},
		filter.Choice{Value: ItemTypeStaff, Label: "Staff"},
		filter.Choice{Value: ItemTypeWand, Label: "Wand"},
		filter.Choice{Value: ItemTypeArtifact, Label: "Artifact"},
	)

	baseSkillChoices = filter.StaticChoices(
		filter.Choice{Value: BaseSkillSTR, Label: BaseSkillSTR},
		filter.Choice{Value: BaseSkillCON, Label: BaseSkillCON},
		filter.Choice{Value: BaseSkillDEX, Label: BaseSkillDEX},
		filter.Choice{Value: BaseSkillINT, Label: BaseSkillINT},
		filter.Choice{Value: BaseSkillWIS, Label: BaseSkillWIS},
		filter.Choice{Value: BaseSkillCHA, Label: BaseSkillCHA},
		filter.Choice{Value: BaseSkillNone, Label: BaseSkillNone},
	)

	baseAttackChoices = filter.StaticChoices(
		filter.Choice{Value: ProgressionGood, Label: "Good"},
		filter.Choice{Value: ProgressionAverage, Label: "Average"},
		filter.Choice{Value: ProgressionPoor, Label: "Poor"},
	)

	saveTypeChoices = filter.StaticChoices(
		filter.Choice{Value: ProgressionGood, Label: "Good"},
		filter.Choice{Value: ProgressionPoor, Label: "Poor"},
	)
)
