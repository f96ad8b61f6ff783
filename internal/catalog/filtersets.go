package catalog

import (
	"github.com/rotisserie/eris"

	"dndtools/app/internal/filter"
)

// Entity names used in URLs.
const (
	EntitySpells      = "spells"
	EntitySpellsAdmin = "spells-admin"
	EntityItems       = "items"
	EntityLanguages   = "languages"
	EntityClasses     = "classes"
	EntityRulebooks   = "rulebooks"
	EntityFeats       = "feats"
	EntityDomains     = "domains"
	EntityDescriptors = "descriptors"
	EntitySkills      = "skills"
	EntityRules       = "rules"
	EntityDeities     = "deities"
	EntityMonsters    = "monsters"
	EntityRaces       = "races"
	EntityRaceTypes   = "race-types"
)

func toRulebook() filter.Hop {
	return filter.Hop{Table: TableRulebooks, From: "rulebook_id", To: "id"}
}

func toEdition() filter.Hop {
	return filter.Hop{Table: TableEditions, From: "edition_id", To: "id"}
}

func nameField(label string) filter.Field {
	return filter.Field{Name: "name", Label: label, Kind: filter.KindText, Path: filter.Column("name")}
}

func textField(name string) filter.Field {
	return filter.Field{Name: name, Kind: filter.KindText, Path: filter.Column(name)}
}

func booleanField(name string) filter.Field {
	return filter.Field{Name: name, Kind: filter.KindBoolean, Path: filter.Column(name)}
}

func rulebookField(kind filter.Kind) filter.Field {
	return filter.Field{
		Name:    "rulebook__slug",
		Label:   "Rulebook",
		Kind:    kind,
		Path:    filter.Via("slug", toRulebook()),
		Choices: rulebookChoices,
	}
}

func editionField() filter.Field {
	return filter.Field{
		Name:    "rulebook__dnd_edition__slug",
		Label:   "Edition",
		Kind:    filter.KindMultiChoice,
		Path:    filter.Via("slug", toRulebook(), toEdition()),
		Choices: editionChoices,
	}
}

func nameSorts(table string) map[string]string {
	return map[string]string{"name": table + ".name"}
}

func spellSet() *filter.Set {
	classLevels := filter.Hop{Table: TableSpellClassLevels, From: "id", To: "spell_id"}
	domainLevels := filter.Hop{Table: TableSpellDomainLevels, From: "id", To: "spell_id"}

	return &filter.Set{
		Name:  EntitySpells,
		Table: TableSpells,
		Fields: []filter.Field{
			nameField("Spell name"),
			{Name: "range", Kind: filter.KindText, Path: filter.Column("spell_range")},
			textField("spell_resistance"),
			textField("area"),
			textField("duration"),
			textField("saving_throw"),
			textField("casting_time"),
			{
				Name:    "school__slug",
				Label:   "School",
				Kind:    filter.KindChoice,
				Path:    filter.Via("slug", filter.Hop{Table: TableSpellSchools, From: "school_id", To: "id"}),
				Choices: namedChoices(TableSpellSchools),
			},
			{
				Name:    "sub_school__slug",
				Label:   "Sub-school",
				Kind:    filter.KindChoice,
				Path:    filter.Via("slug", filter.Hop{Table: TableSpellSubSchools, From: "sub_school_id", To: "id"}),
				Choices: namedChoices(TableSpellSubSchools),
			},
			{
				Name:  "descriptors__slug",
				Label: "Descriptor",
				Kind:  filter.KindChoice,
				Path: filter.Via("slug",
					filter.Hop{Table: TableSpellDescriptorLinks, From: "id", To: "spell_id"},
					filter.Hop{Table: TableSpellDescriptors, From: "descriptor_id", To: "id"},
				),
				Choices: namedChoices(TableSpellDescriptors),
			},
			booleanField("verbal_component"),
			booleanField("somatic_component"),
			booleanField("material_component"),
			booleanField("arcane_focus_component"),
			booleanField("divine_focus_component"),
			booleanField("xp_component"),
			rulebookField(filter.KindChoice),
			editionField(),
			textField("description"),
			{
				Name:  "class_levels__slug",
				Label: "Class",
				Help:  "Shows only classes with own spell lists",
				Kind:  filter.KindChoice,
				Path: filter.Via("slug", classLevels,
					filter.Hop{Table: TableCharacterClasses, From: "character_class_id", To: "id"},
				),
				Group:   "class_level",
				Choices: castingClassChoices,
			},
			{
				Name:    "spellclasslevel__level",
				Label:   "Level for class",
				Kind:    filter.KindMultiChoice,
				Path:    filter.Via("level", classLevels),
				Group:   "class_level",
				Numeric: true,
				Choices: spellLevelChoices(),
			},
			{
				Name:  "domain_levels__slug",
				Label: "Domain",
				Kind:  filter.KindChoice,
				Path: filter.Via("slug", domainLevels,
					filter.Hop{Table: TableDomains, From: "domain_id", To: "id"},
				),
				Group:   "domain_level",
				Choices: namedChoices(TableDomains),
			},
			{
				Name:    "spelldomainlevel__level",
				Label:   "Level for domain",
				Kind:    filter.KindMultiChoice,
				Path:    filter.Via("level", domainLevels),
				Group:   "domain_level",
				Numeric: true,
				Choices: spellLevelChoices(),
			},
		},
		Sorts: map[string]string{
			"name":     TableSpells + ".name",
			"page":     TableSpells + ".page",
			"verified": TableSpells + ".verified",
		},
		Expressions: true,
	}
}

func spellAdminSet() *filter.Set {
	set := spellSet()
	set.Name = EntitySpellsAdmin
	set.Fields = append([]filter.Field{booleanField("verified")}, set.Fields...)
	return set
}

func itemSet() *filter.Set {
	return &filter.Set{
		Name:  EntityItems,
		Table: TableItems,
		Fields: []filter.Field{
			nameField("Item name"),
			editionField(),
			rulebookField(filter.KindChoice),
			{Name: "price_bonus", Label: "Price bonus", Kind: filter.KindNumber, Path: filter.Column("price_bonus")},
			{Name: "price_gp", Label: "Price in GP (range)", Kind: filter.KindRange, Path: filter.Column("price_gp")},
			{Name: "type", Label: "Item Type", Kind: filter.KindChoice, Path: filter.Column("type"), Choices: itemTypeChoices},
			{
				Name:    "body_slot__slug",
				Label:   "Body Slot",
				Kind:    filter.KindChoice,
				Path:    filter.Via("slug", filter.Hop{Table: TableItemSlots, From: "body_slot_id", To: "id"}),
				Choices: namedChoices(TableItemSlots),
			},
			{
				Name:  "property__slug",
				Label: "Property",
				Kind:  filter.KindMultiChoice,
				Path: filter.Via("slug",
					filter.Hop{Table: TableItemPropertyLinks, From: "id", To: "item_id"},
					filter.Hop{Table: TableItemProperties, From: "property_id", To: "id"},
				),
				Choices: namedChoices(TableItemProperties),
			},
			{
				Name:  "requirement",
				Label: "Requirements",
				Kind:  filter.KindTagged,
				Tagged: &filter.TaggedLookup{
					Table:      TableItemRequirements,
					Owner:      "item_id",
					KindColumn: "kind",
					Joins:      itemRequirementJoins,
					Text:       itemRequirementTextSQL,
					KindParam:  "requirement_kind",
					Kinds: []filter.Choice{
						{Value: RequirementText, Label: "Text"},
						{Value: RequirementSpell, Label: "Spell"},
						{Value: RequirementFeat, Label: "Feat"},
					},
				},
			},
		},
		Sorts: map[string]string{
			"name":     TableItems + ".name",
			"price_gp": TableItems + ".price_gp",
		},
		Expressions: true,
	}
}

func classSet() *filter.Set {
	toClass := filter.Hop{Table: TableCharacterClasses, From: "character_class_id", To: "id"}
	className := "(SELECT " + TableCharacterClasses + ".name FROM " + TableCharacterClasses +
		" WHERE " + TableCharacterClasses + ".id = " + TableClassVariants + ".character_class_id)"

	return &filter.Set{
		Name:  EntityClasses,
		Table: TableClassVariants,
		Fields: []filter.Field{
			{Name: "character_class__name", Label: "Class name", Kind: filter.KindText, Path: filter.Via("name", toClass)},
			rulebookField(filter.KindChoice),
			editionField(),
			{Name: "character_class__prestige", Label: "Prestige", Kind: filter.KindBoolean, Path: filter.Via("prestige", toClass)},
			{Name: "required_bab", Label: "Required Base Attack (range)", Kind: filter.KindRange, Path: filter.Column("required_bab")},
			{Name: "skill_points", Label: "Skill points/level (range)", Kind: filter.KindRange, Path: filter.Column("skill_points")},
			{Name: "class_features", Label: "Class feature", Kind: filter.KindText, Path: filter.Column("class_features")},
			{Name: "hit_die", Label: "Hit die (range)", Kind: filter.KindRange, Path: filter.Column("hit_die")},
		},
		Order: []filter.Order{{Expr: className}},
		Sorts: map[string]string{
			"name":    className,
			"hit_die": TableClassVariants + ".hit_die",
		},
		Expressions: true,
	}
}

func rulebookSet() *filter.Set {
	return &filter.Set{
		Name:  EntityRulebooks,
		Table: TableRulebooks,
		Fields: []filter.Field{
			nameField(""),
			{
				Name:    "dnd_edition__slug",
				Label:   "Edition",
				Kind:    filter.KindChoice,
				Path:    filter.Via("slug", toEdition()),
				Choices: editionChoices,
			},
		},
		Sorts: map[string]string{
			"name": TableRulebooks + ".name",
			"year": TableRulebooks + ".year",
		},
	}
}

func featSet() *filter.Set {
	return &filter.Set{
		Name:  EntityFeats,
		Table: TableFeats,
		Fields: []filter.Field{
			nameField("Feat name"),
			{
				Name:  "feat_categories__slug",
				Label: "Feat category",
				Kind:  filter.KindMultiChoice,
				Path: filter.Via("slug",
					filter.Hop{Table: TableFeatCategoryLinks, From: "id", To: "feat_id"},
					filter.Hop{Table: TableFeatCategories, From: "category_id", To: "id"},
				),
				Choices: namedChoices(TableFeatCategories),
			},
			rulebookField(filter.KindMultiChoice),
			editionField(),
			textField("description"),
			textField("benefit"),
			textField("special"),
			textField("normal"),
			{
				Name:  "prerequisite",
				Label: "Prerequisites",
				Kind:  filter.KindTagged,
				Tagged: &filter.TaggedLookup{
					Table:      TableFeatPrerequisites,
					Owner:      "feat_id",
					KindColumn: "kind",
					Joins:      featPrerequisiteJoins,
					Text:       featPrerequisiteTextSQL,
					KindParam:  "prerequisite_kind",
					Kinds: []filter.Choice{
						{Value: PrerequisiteText, Label: "Text"},
						{Value: PrerequisiteSpecial, Label: "Special"},
						{Value: PrerequisiteSkill, Label: "Skill"},
						{Value: PrerequisiteFeat, Label: "Feat"},
					},
				},
			},
		},
		Sorts:       nameSorts(TableFeats),
		Expressions: true,
	}
}

func skillSet() *filter.Set {
	return &filter.Set{
		Name:  EntitySkills,
		Table: TableSkills,
		Fields: []filter.Field{
			nameField(""),
			booleanField("trained_only"),
			booleanField("armor_check_penalty"),
			{Name: "base_skill", Label: "Base skill", Kind: filter.KindChoice, Path: filter.Column("base_skill"), Choices: baseSkillChoices},
		},
		Sorts:       nameSorts(TableSkills),
		Expressions: true,
	}
}

func raceTypeSet() *filter.Set {
	return &filter.Set{
		Name:  EntityRaceTypes,
		Table: TableRaceTypes,
		Fields: []filter.Field{
			nameField("Race type name"),
			{Name: "hit_die_size", Label: "Hit Die Size", Help: "(range from-to)", Kind: filter.KindRange, Path: filter.Column("hit_die_size")},
			{Name: "base_attack_type", Label: "Base Attack Type", Kind: filter.KindChoice, Path: filter.Column("base_attack_type"), Choices: baseAttackChoices},
			{Name: "base_fort_save_type", Label: "Fort Save Type", Kind: filter.KindChoice, Path: filter.Column("base_fort_save_type"), Choices: saveTypeChoices},
			{Name: "base_reflex_save_type", Label: "Reflex Save Type", Kind: filter.KindChoice, Path: filter.Column("base_reflex_save_type"), Choices: saveTypeChoices},
			{Name: "base_will_save_type", Label: "Will Save Type", Kind: filter.KindChoice, Path: filter.Column("base_will_save_type"), Choices: saveTypeChoices},
		},
		Sorts:       nameSorts(TableRaceTypes),
		Expressions: true,
	}
}

// rulebookContentSet is the shape shared by monsters and races.
func rulebookContentSet(name, table, label string) *filter.Set {
	return &filter.Set{
		Name:  name,
		Table: table,
		Fields: []filter.Field{
			nameField(label),
			rulebookField(filter.KindChoice),
			editionField(),
		},
		Sorts: nameSorts(table),
	}
}

func nameOnlySet(name, table, label string) *filter.Set {
	return &filter.Set{
		Name:   name,
		Table:  table,
		Fields: []filter.Field{nameField(label)},
		Sorts:  nameSorts(table),
	}
}

// FilterSets returns the public filter sets keyed by entity name.
func FilterSets() (map[string]*filter.Set, error) {
	sets := []*filter.Set{
		spellSet(),
		itemSet(),
		nameOnlySet(EntityLanguages, TableLanguages, "Language name"),
		classSet(),
		rulebookSet(),
		featSet(),
		nameOnlySet(EntityDomains, TableDomains, "Domain name"),
		nameOnlySet(EntityDescriptors, TableSpellDescriptors, "Descriptor name"),
		skillSet(),
		nameOnlySet(EntityRules, TableRules, ""),
		nameOnlySet(EntityDeities, TableDeities, ""),
		rulebookContentSet(EntityMonsters, TableMonsters, "Monster name"),
		rulebookContentSet(EntityRaces, TableRaces, "Race name"),
		raceTypeSet(),
	}

	byName := make(map[string]*filter.Set, len(sets))
	for _, set := range sets {
		if err := set.Validate(); err != nil {
			return nil, eris.Wrapf(err, "validating filter set %s", set.Name)
		}
		byName[set.Name] = set
	}
	return byName, nil
}

// AdminSpellSet returns the curator view of spells, which adds the verified flag.
func AdminSpellSet() (*filter.Set, error) {
	set := spellAdminSet()
	if err := set.Validate(); err != nil {
		return nil, eris.Wrap(err, "validating admin spell filter set")
	}
	return set, nil
}
