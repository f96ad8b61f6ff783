package catalog

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Fixtures is a catalog document whose records reference each other by slug.
type Fixtures struct {
	Editions  []EditionFixture  `yaml:"editions"`
	Rulebooks []RulebookFixture `yaml:"rulebooks"`

	SpellSchools        []NamedFixture `yaml:"spell_schools"`
	SpellSubSchools     []NamedFixture `yaml:"spell_sub_schools"`
	SpellDescriptors    []NamedFixture `yaml:"spell_descriptors"`
	FeatCategories      []NamedFixture `yaml:"feat_categories"`
	ItemSlots           []NamedFixture `yaml:"item_slots"`
	ItemProperties      []NamedFixture `yaml:"item_properties"`
	ItemAuraTypes       []NamedFixture `yaml:"item_aura_types"`
	ItemActivationTypes []NamedFixture `yaml:"item_activation_types"`
	Languages           []NamedFixture `yaml:"languages"`
	Deities             []DeityFixture `yaml:"deities"`
	RaceSizes           []NamedFixture `yaml:"race_sizes"`
	RaceSpeedTypes      []NamedFixture `yaml:"race_speed_types"`
	MonsterTypes        []NamedFixture `yaml:"monster_types"`
	MonsterSubtypes     []NamedFixture `yaml:"monster_subtypes"`

	Skills               []SkillFixture      `yaml:"skills"`
	RaceTypes            []RaceTypeFixture   `yaml:"race_types"`
	SpecialPrerequisites []SpecialFixture    `yaml:"special_prerequisites"`
	Classes              []ClassFixture      `yaml:"character_classes"`
	Domains              []DomainFixture     `yaml:"domains"`
	Spells               []SpellFixture      `yaml:"spells"`
	Feats                []FeatFixture       `yaml:"feats"`
	Races                []RaceFixture       `yaml:"races"`
	Monsters             []MonsterFixture    `yaml:"monsters"`
	Items                []ItemFixture       `yaml:"items"`
	Rules                []RuleFixture       `yaml:"rules"`
	News                 []NewsFixture       `yaml:"news"`
	Pages                []StaticPageFixture `yaml:"pages"`
}

// NamedFixture is a lookup record with a name and an optional explicit slug.
type NamedFixture struct {
	Name string `yaml:"name"`
	Slug string `yaml:"slug"`
}

func (f NamedFixture) named() Named {
	return Named{Name: f.Name, Slug: f.Slug}
}

type EditionFixture struct {
	NamedFixture `yaml:",inline"`
	System       string `yaml:"system"`
}

type RulebookFixture struct {
	NamedFixture `yaml:",inline"`
	Edition      string `yaml:"edition"`
	Abbreviation string `yaml:"abbreviation"`
	Year         string `yaml:"year"`
}

type DeityFixture struct {
	NamedFixture `yaml:",inline"`
	Alignment    string `yaml:"alignment"`
	Description  string `yaml:"description"`
}

type SkillFixture struct {
	NamedFixture      `yaml:",inline"`
	BaseSkill         string `yaml:"base_skill"`
	TrainedOnly       bool   `yaml:"trained_only"`
	ArmorCheckPenalty bool   `yaml:"armor_check_penalty"`
	Description       string `yaml:"description"`
}

type RaceTypeFixture struct {
	NamedFixture       `yaml:",inline"`
	HitDieSize         int    `yaml:"hit_die_size"`
	BaseAttackType     string `yaml:"base_attack_type"`
	BaseFortSaveType   string `yaml:"base_fort_save_type"`
	BaseReflexSaveType string `yaml:"base_reflex_save_type"`
	BaseWillSaveType   string `yaml:"base_will_save_type"`
}

type SpecialFixture struct {
	NamedFixture `yaml:",inline"`
	PrintFormat  string `yaml:"print_format"`
}

type ClassFixture struct {
	NamedFixture     `yaml:",inline"`
	Prestige         bool                  `yaml:"prestige"`
	ShortDescription string                `yaml:"short_description"`
	Variants         []ClassVariantFixture `yaml:"variants"`
}

type ClassVariantFixture struct {
	Rulebook       string          `yaml:"rulebook"`
	Page           *int            `yaml:"page"`
	HitDie         *int            `yaml:"hit_die"`
	SkillPoints    *int            `yaml:"skill_points"`
	RequiredBAB    *int            `yaml:"required_bab"`
	Alignment      string          `yaml:"alignment"`
	ClassFeatures  string          `yaml:"class_features"`
	Requirements   string          `yaml:"requirements"`
	ClassSkills    []string        `yaml:"class_skills"`
	RequiredFeats  []string        `yaml:"required_feats"`
	RequiredRaces  []string        `yaml:"required_races"`
	RequiredSkills []RankedFixture `yaml:"required_skills"`
}

// RankedFixture references a skill with a number of ranks.
type RankedFixture struct {
	Skill string `yaml:"skill"`
	Ranks int    `yaml:"ranks"`
	Extra string `yaml:"extra"`
}

type DomainFixture struct {
	NamedFixture `yaml:",inline"`
	Variants     []DomainVariantFixture `yaml:"variants"`
}

type DomainVariantFixture struct {
	Rulebook     string   `yaml:"rulebook"`
	Page         *int     `yaml:"page"`
	Requirement  string   `yaml:"requirement"`
	GrantedPower string   `yaml:"granted_power"`
	Deities      []string `yaml:"deities"`
	OtherDeities []string `yaml:"other_deities"`
}

// LevelFixture places a spell on a class or domain list.
type LevelFixture struct {
	Class  string `yaml:"class"`
	Domain string `yaml:"domain"`
	Level  int    `yaml:"level"`
	Extra  string `yaml:"extra"`
}

type SpellFixture struct {
	NamedFixture    `yaml:",inline"`
	Rulebook        string         `yaml:"rulebook"`
	Page            *int           `yaml:"page"`
	School          string         `yaml:"school"`
	SubSchool       string         `yaml:"sub_school"`
	Descriptors     []string       `yaml:"descriptors"`
	Verbal          bool           `yaml:"verbal"`
	Somatic         bool           `yaml:"somatic"`
	Material        bool           `yaml:"material"`
	ArcaneFocus     bool           `yaml:"arcane_focus"`
	DivineFocus     bool           `yaml:"divine_focus"`
	XP              bool           `yaml:"xp"`
	CastingTime     string         `yaml:"casting_time"`
	Range           string         `yaml:"range"`
	Target          string         `yaml:"target"`
	Effect          string         `yaml:"effect"`
	Area            string         `yaml:"area"`
	Duration        string         `yaml:"duration"`
	SavingThrow     string         `yaml:"saving_throw"`
	SpellResistance string         `yaml:"spell_resistance"`
	Description     string         `yaml:"description"`
	ClassLevels     []LevelFixture `yaml:"class_levels"`
	DomainLevels    []LevelFixture `yaml:"domain_levels"`
}

// PrerequisiteFixture sets exactly one of Text, Special, Skill or Feat.
type PrerequisiteFixture struct {
	Text    string `yaml:"text"`
	Special string `yaml:"special"`
	Value   string `yaml:"value"`
	Skill   string `yaml:"skill"`
	Ranks   int    `yaml:"ranks"`
	Feat    string `yaml:"feat"`
}

type FeatFixture struct {
	NamedFixture  `yaml:",inline"`
	Rulebook      string                `yaml:"rulebook"`
	Page          *int                  `yaml:"page"`
	Description   string                `yaml:"description"`
	Benefit       string                `yaml:"benefit"`
	Special       string                `yaml:"special"`
	Normal        string                `yaml:"normal"`
	Categories    []string              `yaml:"categories"`
	Prerequisites []PrerequisiteFixture `yaml:"prerequisites"`
}

// SpeedFixture is a movement speed of a race or monster.
type SpeedFixture struct {
	Type  string `yaml:"type"`
	Speed int    `yaml:"speed"`
}

type FavoredClassFixture struct {
	Class string `yaml:"class"`
	Extra string `yaml:"extra"`
}

type RaceFixture struct {
	NamedFixture       `yaml:",inline"`
	Rulebook           string                `yaml:"rulebook"`
	Page               *int                  `yaml:"page"`
	Str                int                   `yaml:"str"`
	Dex                int                   `yaml:"dex"`
	Con                int                   `yaml:"con"`
	Int                int                   `yaml:"int"`
	Wis                int                   `yaml:"wis"`
	Cha                int                   `yaml:"cha"`
	LevelAdjustment    int                   `yaml:"level_adjustment"`
	RaceType           string                `yaml:"race_type"`
	Size               string                `yaml:"size"`
	Description        string                `yaml:"description"`
	Speeds             []SpeedFixture        `yaml:"speeds"`
	FavoredClasses     []FavoredClassFixture `yaml:"favored_classes"`
	AutomaticLanguages []string              `yaml:"automatic_languages"`
	BonusLanguages     []string              `yaml:"bonus_languages"`
}

type MonsterFeatFixture struct {
	Feat  string `yaml:"feat"`
	Extra string `yaml:"extra"`
}

type MonsterFixture struct {
	NamedFixture     `yaml:",inline"`
	Rulebook         string               `yaml:"rulebook"`
	Page             *int                 `yaml:"page"`
	Type             string               `yaml:"type"`
	Subtypes         []string             `yaml:"subtypes"`
	Size             string               `yaml:"size"`
	Abilities        map[string]any       `yaml:"abilities"`
	SpecialQualities string               `yaml:"special_qualities"`
	Description      string               `yaml:"description"`
	Speeds           []SpeedFixture       `yaml:"speeds"`
	Feats            []MonsterFeatFixture `yaml:"feats"`
	Skills           []RankedFixture      `yaml:"skills"`
}

// RequirementFixture sets exactly one of Text, Spell or Feat.
type RequirementFixture struct {
	Text  string `yaml:"text"`
	Spell string `yaml:"spell"`
	Feat  string `yaml:"feat"`
}

type ItemFixture struct {
	NamedFixture `yaml:",inline"`
	Rulebook     string               `yaml:"rulebook"`
	Page         *int                 `yaml:"page"`
	Type         string               `yaml:"type"`
	PriceGP      *int                 `yaml:"price_gp"`
	PriceBonus   *int                 `yaml:"price_bonus"`
	BodySlot     string               `yaml:"body_slot"`
	Properties   []string             `yaml:"properties"`
	Aura         string               `yaml:"aura"`
	AuraSchools  []string             `yaml:"aura_schools"`
	CasterLevel  *int                 `yaml:"caster_level"`
	Activation   string               `yaml:"activation"`
	Requirements []RequirementFixture `yaml:"requirements"`
	Description  string               `yaml:"description"`
}

type RuleFixture struct {
	NamedFixture `yaml:",inline"`
	Rulebook     string `yaml:"rulebook"`
	Page         *int   `yaml:"page"`
	Body         string `yaml:"body"`
}

type NewsFixture struct {
	Title     string    `yaml:"title"`
	Body      string    `yaml:"body"`
	Published time.Time `yaml:"published"`
	Enabled   *bool     `yaml:"enabled"`
}

type StaticPageFixture struct {
	NamedFixture `yaml:",inline"`
	Body         string `yaml:"body"`
}

// DecodeFixtures reads a YAML fixtures document.
func DecodeFixtures(r io.Reader) (*Fixtures, error) {
	var fixtures Fixtures
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&fixtures); err != nil {
		if eris.Is(err, io.EOF) {
			return &fixtures, nil
		}
		return nil, eris.Wrap(err, "decoding fixtures")
	}
	return &fixtures, nil
}

// LoadFixtures inserts every record of the document in one transaction and
// returns the number of rows created per table.
func LoadFixtures(ctx context.Context, db *gorm.DB, fixtures *Fixtures, logger *logrus.Logger) (map[string]int, error) {
	if db == nil {
		return nil, eris.New("gorm DB is required")
	}
	if fixtures == nil {
		return nil, eris.New("fixtures are required")
	}

	s := &seeder{ids: map[string]map[string]uint{}, counts: map[string]int{}}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		s.tx = tx
		return s.load(fixtures)
	})
	if err != nil {
		if logger != nil {
			logger.WithField("component", "catalog.fixtures").WithField("error", err.Error()).Error("loading fixtures failed")
		}
		return nil, eris.Wrap(err, "loading fixtures")
	}

	if logger != nil {
		fields := logrus.Fields{"component": "catalog.fixtures"}
		for table, count := range s.counts {
			fields[table] = count
		}
		logger.WithFields(fields).Info("fixtures loaded")
	}
	return s.counts, nil
}

type seeder struct {
	tx     *gorm.DB
	ids    map[string]map[string]uint
	counts map[string]int
}

func (s *seeder) load(f *Fixtures) error {
	steps := []func(*Fixtures) error{
		s.loadEditions,
		s.loadLookups,
		s.loadSkills,
		s.loadRaceTypes,
		s.loadSpecials,
		s.loadClasses,
		s.loadDomains,
		s.loadSpells,
		s.loadFeats,
		s.loadRaces,
		s.loadClassRequirements,
		s.loadMonsters,
		s.loadItems,
		s.loadRules,
		s.loadNews,
		s.loadPages,
	}
	for _, step := range steps {
		if err := step(f); err != nil {
			return err
		}
	}
	return nil
}

// create inserts record without touching its associations and remembers its slug.
func (s *seeder) create(table string, record any, named *Named, id *uint) error {
	if err := s.tx.Omit(clause.Associations).Create(record).Error; err != nil {
		name := ""
		if named != nil {
			name = named.Name
		}
		return eris.Wrapf(err, "creating %s %q", table, name)
	}
	s.counts[table]++
	if named != nil {
		if s.ids[table] == nil {
			s.ids[table] = map[string]uint{}
		}
		s.ids[table][named.Slug] = *id
	}
	return nil
}

// ref resolves a slug within table, falling back to rows loaded earlier.
func (s *seeder) ref(table, slug string) (uint, error) {
	if id, ok := s.ids[table][slug]; ok {
		return id, nil
	}
	var ids []uint
	if err := s.tx.Table(table).Where("slug = ?", slug).Limit(1).Pluck("id", &ids).Error; err != nil {
		return 0, eris.Wrapf(err, "resolving %s %q", table, slug)
	}
	if len(ids) == 0 {
		return 0, eris.Errorf("unknown %s %q", table, slug)
	}
	if s.ids[table] == nil {
		s.ids[table] = map[string]uint{}
	}
	s.ids[table][slug] = ids[0]
	return ids[0], nil
}

func (s *seeder) optionalRef(table, slug string) (*uint, error) {
	if slug == "" {
		return nil, nil
	}
	id, err := s.ref(table, slug)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// link fills a many-to-many join table.
func (s *seeder) link(table, ownerColumn string, ownerID uint, refColumn, refTable string, slugs []string) error {
	if len(slugs) == 0 {
		return nil
	}
	rows := make([]map[string]any, 0, len(slugs))
	for _, slug := range slugs {
		id, err := s.ref(refTable, slug)
		if err != nil {
			return err
		}
		rows = append(rows, map[string]any{ownerColumn: ownerID, refColumn: id})
	}
	if err := s.tx.Table(table).Create(rows).Error; err != nil {
		return eris.Wrapf(err, "linking %s", table)
	}
	s.counts[table] += len(rows)
	return nil
}

func (s *seeder) child(table string, record any) error {
	if err := s.tx.Omit(clause.Associations).Create(record).Error; err != nil {
		return eris.Wrapf(err, "creating %s", table)
	}
	s.counts[table]++
	return nil
}

func (s *seeder) loadEditions(f *Fixtures) error {
	for _, fx := range f.Editions {
		edition := Edition{Named: fx.named(), System: fx.System}
		if err := s.create(TableEditions, &edition, &edition.Named, &edition.ID); err != nil {
			return err
		}
	}
	for _, fx := range f.Rulebooks {
		editionID, err := s.ref(TableEditions, fx.Edition)
		if err != nil {
			return err
		}
		rulebook := Rulebook{Named: fx.named(), EditionID: editionID, Abbreviation: fx.Abbreviation, Year: fx.Year}
		if err := s.create(TableRulebooks, &rulebook, &rulebook.Named, &rulebook.ID); err != nil {
			return err
		}
	}
	return nil
}

func (s *seeder) loadLookups(f *Fixtures) error {
	lookups := []struct {
		table   string
		records []NamedFixture
	}{
		{TableSpellSchools, f.SpellSchools},
		{TableSpellSubSchools, f.SpellSubSchools},
		{TableSpellDescriptors, f.SpellDescriptors},
		{TableFeatCategories, f.FeatCategories},
		{TableItemSlots, f.ItemSlots},
		{TableItemProperties, f.ItemProperties},
		{tableItemAuraTypes, f.ItemAuraTypes},
		{tableItemActivationTypes, f.ItemActivationTypes},
		{TableLanguages, f.Languages},
		{tableRaceSizes, f.RaceSizes},
		{tableRaceSpeedTypes, f.RaceSpeedTypes},
		{tableMonsterTypes, f.MonsterTypes},
		{tableMonsterSubtypes, f.MonsterSubtypes},
	}
	for _, l := range lookups {
		for _, fx := range l.records {
			record, named, id := newLookup(l.table, fx.named())
			if err := s.create(l.table, record, named, id); err != nil {
				return err
			}
		}
	}

	for _, fx := range f.Deities {
		deity := Deity{Named: fx.named(), Alignment: fx.Alignment, Description: fx.Description}
		if err := s.create(TableDeities, &deity, &deity.Named, &deity.ID); err != nil {
			return err
		}
	}
	return nil
}

func (s *seeder) loadSkills(f *Fixtures) error {
	for _, fx := range f.Skills {
		skill := Skill{
			Named:             fx.named(),
			BaseSkill:         fx.BaseSkill,
			TrainedOnly:       fx.TrainedOnly,
			ArmorCheckPenalty: fx.ArmorCheckPenalty,
			Description:       fx.Description,
		}
		if err := s.create(TableSkills, &skill, &skill.Named, &skill.ID); err != nil {
			return err
		}
	}
	return nil
}

func (s *seeder) loadRaceTypes(f *Fixtures) error {
	for _, fx := range f.RaceTypes {
		raceType := RaceType{
			Named:              fx.named(),
			HitDieSize:         fx.HitDieSize,
			BaseAttackType:     fx.BaseAttackType,
			BaseFortSaveType:   fx.BaseFortSaveType,
			BaseReflexSaveType: fx.BaseReflexSaveType,
			BaseWillSaveType:   fx.BaseWillSaveType,
		}
		if err := s.create(TableRaceTypes, &raceType, &raceType.Named, &raceType.ID); err != nil {
			return err
		}
	}
	return nil
}

func (s *seeder) loadSpecials(f *Fixtures) error {
	for _, fx := range f.SpecialPrerequisites {
		special := SpecialFeatPrerequisite{Named: fx.named(), PrintFormat: fx.PrintFormat}
		if err := s.create(TableSpecialPrerequisites, &special, &special.Named, &special.ID); err != nil {
			return err
		}
	}
	return nil
}

func (s *seeder) loadClasses(f *Fixtures) error {
	for _, fx := range f.Classes {
		class := CharacterClass{Named: fx.named(), Prestige: fx.Prestige, ShortDescription: fx.ShortDescription}
		if err := s.create(TableCharacterClasses, &class, &class.Named, &class.ID); err != nil {
			return err
		}
		for _, vx := range fx.Variants {
			rulebookID, err := s.ref(TableRulebooks, vx.Rulebook)
			if err != nil {
				return err
			}
			variant := CharacterClassVariant{
				CharacterClassID: class.ID,
				RulebookID:       rulebookID,
				Page:             vx.Page,
				HitDie:           vx.HitDie,
				SkillPoints:      vx.SkillPoints,
				RequiredBAB:      vx.RequiredBAB,
				Alignment:        vx.Alignment,
				ClassFeatures:    vx.ClassFeatures,
				Requirements:     vx.Requirements,
			}
			if err := s.child(TableClassVariants, &variant); err != nil {
				return err
			}
			if err := s.link("class_variant_skills", "variant_id", variant.ID, "skill_id", TableSkills, vx.ClassSkills); err != nil {
				return err
			}
		}
	}
	return nil
}

// loadClassRequirements runs once feats and races exist.
func (s *seeder) loadClassRequirements(f *Fixtures) error {
	for _, fx := range f.Classes {
		classID, err := s.ref(TableCharacterClasses, classSlug(fx))
		if err != nil {
			return err
		}
		var variants []CharacterClassVariant
		if err := s.tx.Where("character_class_id = ?", classID).Order("id").Find(&variants).Error; err != nil {
			return eris.Wrapf(err, "loading variants of %s", fx.Name)
		}
		for i, vx := range fx.Variants {
			if i >= len(variants) {
				break
			}
			variantID := variants[i].ID
			for _, slug := range vx.RequiredFeats {
				featID, err := s.ref(TableFeats, slug)
				if err != nil {
					return err
				}
				if err := s.child("class_variant_requires_feats", &ClassVariantRequiresFeat{VariantID: variantID, FeatID: featID}); err != nil {
					return err
				}
			}
			for _, slug := range vx.RequiredRaces {
				raceID, err := s.ref(TableRaces, slug)
				if err != nil {
					return err
				}
				if err := s.child("class_variant_requires_races", &ClassVariantRequiresRace{VariantID: variantID, RaceID: raceID}); err != nil {
					return err
				}
			}
			for _, rx := range vx.RequiredSkills {
				skillID, err := s.ref(TableSkills, rx.Skill)
				if err != nil {
					return err
				}
				requirement := ClassVariantRequiresSkill{VariantID: variantID, SkillID: skillID, Ranks: rx.Ranks, Extra: rx.Extra}
				if err := s.child("class_variant_requires_skills", &requirement); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func classSlug(fx ClassFixture) string {
	if fx.Slug != "" {
		return fx.Slug
	}
	return Slugify(fx.Name)
}

func (s *seeder) loadDomains(f *Fixtures) error {
	for _, fx := range f.Domains {
		domain := Domain{Named: fx.named()}
		if err := s.create(TableDomains, &domain, &domain.Named, &domain.ID); err != nil {
			return err
		}
		for _, vx := range fx.Variants {
			rulebookID, err := s.ref(TableRulebooks, vx.Rulebook)
			if err != nil {
				return err
			}
			variant := DomainVariant{
				DomainID:     domain.ID,
				RulebookID:   rulebookID,
				Page:         vx.Page,
				Requirement:  vx.Requirement,
				GrantedPower: vx.GrantedPower,
			}
			if err := s.child(TableDomainVariants, &variant); err != nil {
				return err
			}
			if err := s.link("domain_variant_deities", "variant_id", variant.ID, "deity_id", TableDeities, vx.Deities); err != nil {
				return err
			}
			if err := s.link("domain_variant_other_deities", "variant_id", variant.ID, "deity_id", TableDeities, vx.OtherDeities); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *seeder) loadSpells(f *Fixtures) error {
	for _, fx := range f.Spells {
		rulebookID, err := s.ref(TableRulebooks, fx.Rulebook)
		if err != nil {
			return err
		}
		schoolID, err := s.ref(TableSpellSchools, fx.School)
		if err != nil {
			return err
		}
		subSchoolID, err := s.optionalRef(TableSpellSubSchools, fx.SubSchool)
		if err != nil {
			return err
		}

		spell := Spell{
			Named:                fx.named(),
			RulebookID:           rulebookID,
			Page:                 fx.Page,
			SchoolID:             schoolID,
			SubSchoolID:          subSchoolID,
			VerbalComponent:      fx.Verbal,
			SomaticComponent:     fx.Somatic,
			MaterialComponent:    fx.Material,
			ArcaneFocusComponent: fx.ArcaneFocus,
			DivineFocusComponent: fx.DivineFocus,
			XPComponent:          fx.XP,
			CastingTime:          fx.CastingTime,
			Range:                fx.Range,
			Target:               fx.Target,
			Effect:               fx.Effect,
			Area:                 fx.Area,
			Duration:             fx.Duration,
			SavingThrow:          fx.SavingThrow,
			SpellResistance:      fx.SpellResistance,
			Description:          fx.Description,
		}
		if err := s.create(TableSpells, &spell, &spell.Named, &spell.ID); err != nil {
			return err
		}
		if err := s.link(TableSpellDescriptorLinks, "spell_id", spell.ID, "descriptor_id", TableSpellDescriptors, fx.Descriptors); err != nil {
			return err
		}
		for _, lx := range fx.ClassLevels {
			classID, err := s.ref(TableCharacterClasses, lx.Class)
			if err != nil {
				return err
			}
			level := SpellClassLevel{SpellID: spell.ID, CharacterClassID: classID, Level: lx.Level, Extra: lx.Extra}
			if err := s.child(TableSpellClassLevels, &level); err != nil {
				return err
			}
		}
		for _, lx := range fx.DomainLevels {
			domainID, err := s.ref(TableDomains, lx.Domain)
			if err != nil {
				return err
			}
			level := SpellDomainLevel{SpellID: spell.ID, DomainID: domainID, Level: lx.Level, Extra: lx.Extra}
			if err := s.child(TableSpellDomainLevels, &level); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *seeder) loadFeats(f *Fixtures) error {
	created := make([]Feat, 0, len(f.Feats))
	for _, fx := range f.Feats {
		rulebookID, err := s.ref(TableRulebooks, fx.Rulebook)
		if err != nil {
			return err
		}
		feat := Feat{
			Named:       fx.named(),
			RulebookID:  rulebookID,
			Page:        fx.Page,
			Description: fx.Description,
			Benefit:     fx.Benefit,
			Special:     fx.Special,
			Normal:      fx.Normal,
		}
		if err := s.create(TableFeats, &feat, &feat.Named, &feat.ID); err != nil {
			return err
		}
		if err := s.link(TableFeatCategoryLinks, "feat_id", feat.ID, "category_id", TableFeatCategories, fx.Categories); err != nil {
			return err
		}
		created = append(created, feat)
	}

	// Prerequisites may name feats defined later in the document.
	for i, fx := range f.Feats {
		for _, px := range fx.Prerequisites {
			prerequisite, err := s.prerequisite(created[i].ID, px)
			if err != nil {
				return eris.Wrapf(err, "prerequisite of feat %q", fx.Name)
			}
			if err := s.child(TableFeatPrerequisites, &prerequisite); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *seeder) prerequisite(featID uint, px PrerequisiteFixture) (FeatPrerequisite, error) {
	p := FeatPrerequisite{FeatID: featID}
	switch {
	case px.Special != "":
		id, err := s.ref(TableSpecialPrerequisites, px.Special)
		if err != nil {
			return p, err
		}
		p.Kind, p.SpecialID, p.Value = PrerequisiteSpecial, &id, px.Value
	case px.Skill != "":
		id, err := s.ref(TableSkills, px.Skill)
		if err != nil {
			return p, err
		}
		p.Kind, p.SkillID, p.SkillRanks = PrerequisiteSkill, &id, px.Ranks
	case px.Feat != "":
		id, err := s.ref(TableFeats, px.Feat)
		if err != nil {
			return p, err
		}
		p.Kind, p.RequiredFeatID = PrerequisiteFeat, &id
	case px.Text != "":
		p.Kind, p.Text = PrerequisiteText, px.Text
	default:
		return p, eris.New("prerequisite needs one of text, special, skill or feat")
	}
	return p, nil
}

func (s *seeder) loadRaces(f *Fixtures) error {
	for _, fx := range f.Races {
		rulebookID, err := s.ref(TableRulebooks, fx.Rulebook)
		if err != nil {
			return err
		}
		raceTypeID, err := s.optionalRef(TableRaceTypes, fx.RaceType)
		if err != nil {
			return err
		}
		sizeID, err := s.optionalRef(tableRaceSizes, fx.Size)
		if err != nil {
			return err
		}

		race := Race{
			Named:           fx.named(),
			RulebookID:      rulebookID,
			Page:            fx.Page,
			Str:             fx.Str,
			Dex:             fx.Dex,
			Con:             fx.Con,
			Int:             fx.Int,
			Wis:             fx.Wis,
			Cha:             fx.Cha,
			LevelAdjustment: fx.LevelAdjustment,
			RaceTypeID:      raceTypeID,
			SizeID:          sizeID,
			Description:     fx.Description,
		}
		if err := s.create(TableRaces, &race, &race.Named, &race.ID); err != nil {
			return err
		}
		for position, sx := range fx.Speeds {
			typeID, err := s.ref(tableRaceSpeedTypes, sx.Type)
			if err != nil {
				return err
			}
			if err := s.child("race_speeds", &RaceSpeed{RaceID: race.ID, TypeID: typeID, Speed: sx.Speed, Position: position}); err != nil {
				return err
			}
		}
		for _, cx := range fx.FavoredClasses {
			classID, err := s.ref(TableCharacterClasses, cx.Class)
			if err != nil {
				return err
			}
			favored := RaceFavoredCharacterClass{RaceID: race.ID, CharacterClassID: classID, Extra: cx.Extra}
			if err := s.child("race_favored_character_classes", &favored); err != nil {
				return err
			}
		}
		if err := s.link("race_automatic_languages", "race_id", race.ID, "language_id", TableLanguages, fx.AutomaticLanguages); err != nil {
			return err
		}
		if err := s.link("race_bonus_languages", "race_id", race.ID, "language_id", TableLanguages, fx.BonusLanguages); err != nil {
			return err
		}
	}
	return nil
}

func (s *seeder) loadMonsters(f *Fixtures) error {
	for _, fx := range f.Monsters {
		rulebookID, err := s.ref(TableRulebooks, fx.Rulebook)
		if err != nil {
			return err
		}
		typeID, err := s.optionalRef(tableMonsterTypes, fx.Type)
		if err != nil {
			return err
		}
		sizeID, err := s.optionalRef(tableRaceSizes, fx.Size)
		if err != nil {
			return err
		}

		var abilities datatypes.JSON
		if len(fx.Abilities) > 0 {
			raw, err := json.Marshal(fx.Abilities)
			if err != nil {
				return eris.Wrapf(err, "encoding abilities of %q", fx.Name)
			}
			abilities = datatypes.JSON(raw)
		}

		monster := Monster{
			Named:            fx.named(),
			RulebookID:       rulebookID,
			Page:             fx.Page,
			TypeID:           typeID,
			SizeID:           sizeID,
			Abilities:        abilities,
			SpecialQualities: fx.SpecialQualities,
			Description:      fx.Description,
		}
		if err := s.create(TableMonsters, &monster, &monster.Named, &monster.ID); err != nil {
			return err
		}
		if err := s.link("monster_subtype_links", "monster_id", monster.ID, "subtype_id", tableMonsterSubtypes, fx.Subtypes); err != nil {
			return err
		}
		for _, sx := range fx.Speeds {
			typeID, err := s.ref(tableRaceSpeedTypes, sx.Type)
			if err != nil {
				return err
			}
			if err := s.child("monster_speeds", &MonsterSpeed{MonsterID: monster.ID, TypeID: typeID, Speed: sx.Speed}); err != nil {
				return err
			}
		}
		for _, mx := range fx.Feats {
			featID, err := s.ref(TableFeats, mx.Feat)
			if err != nil {
				return err
			}
			if err := s.child("monster_has_feats", &MonsterHasFeat{MonsterID: monster.ID, FeatID: featID, Extra: mx.Extra}); err != nil {
				return err
			}
		}
		for _, rx := range fx.Skills {
			skillID, err := s.ref(TableSkills, rx.Skill)
			if err != nil {
				return err
			}
			if err := s.child("monster_has_skills", &MonsterHasSkill{MonsterID: monster.ID, SkillID: skillID, Ranks: rx.Ranks, Extra: rx.Extra}); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *seeder) loadItems(f *Fixtures) error {
	for _, fx := range f.Items {
		rulebookID, err := s.ref(TableRulebooks, fx.Rulebook)
		if err != nil {
			return err
		}
		bodySlotID, err := s.optionalRef(TableItemSlots, fx.BodySlot)
		if err != nil {
			return err
		}
		auraID, err := s.optionalRef(tableItemAuraTypes, fx.Aura)
		if err != nil {
			return err
		}
		activationID, err := s.optionalRef(tableItemActivationTypes, fx.Activation)
		if err != nil {
			return err
		}

		item := Item{
			Named:        fx.named(),
			RulebookID:   rulebookID,
			Page:         fx.Page,
			Type:         fx.Type,
			PriceGP:      fx.PriceGP,
			PriceBonus:   fx.PriceBonus,
			BodySlotID:   bodySlotID,
			AuraID:       auraID,
			CasterLevel:  fx.CasterLevel,
			ActivationID: activationID,
			Description:  fx.Description,
		}
		if err := s.create(TableItems, &item, &item.Named, &item.ID); err != nil {
			return err
		}
		if err := s.link(TableItemPropertyLinks, "item_id", item.ID, "property_id", TableItemProperties, fx.Properties); err != nil {
			return err
		}
		if err := s.link("item_aura_schools", "item_id", item.ID, "school_id", TableSpellSchools, fx.AuraSchools); err != nil {
			return err
		}
		for _, rx := range fx.Requirements {
			requirement := ItemRequirement{ItemID: item.ID}
			switch {
			case rx.Spell != "":
				id, err := s.ref(TableSpells, rx.Spell)
				if err != nil {
					return err
				}
				requirement.Kind, requirement.SpellID = RequirementSpell, &id
			case rx.Feat != "":
				id, err := s.ref(TableFeats, rx.Feat)
				if err != nil {
					return err
				}
				requirement.Kind, requirement.FeatID = RequirementFeat, &id
			default:
				requirement.Kind, requirement.Text = RequirementText, rx.Text
			}
			if err := s.child(TableItemRequirements, &requirement); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *seeder) loadRules(f *Fixtures) error {
	for _, fx := range f.Rules {
		rulebookID, err := s.optionalRef(TableRulebooks, fx.Rulebook)
		if err != nil {
			return err
		}
		rule := Rule{Named: fx.named(), RulebookID: rulebookID, Page: fx.Page, Body: fx.Body}
		if err := s.create(TableRules, &rule, &rule.Named, &rule.ID); err != nil {
			return err
		}
	}
	return nil
}

func (s *seeder) loadNews(f *Fixtures) error {
	for _, fx := range f.News {
		enabled := fx.Enabled == nil || *fx.Enabled
		entry := NewsEntry{Title: fx.Title, Body: fx.Body, Published: fx.Published, Enabled: enabled}
		if err := s.child(TableNewsEntries, &entry); err != nil {
			return err
		}
	}
	return nil
}

func (s *seeder) loadPages(f *Fixtures) error {
	for _, fx := range f.Pages {
		page := StaticPage{Named: fx.named(), Body: fx.Body}
		if err := s.create(TableStaticPages, &page, &page.Named, &page.ID); err != nil {
			return err
		}
	}
	return nil
}

// newLookup builds an empty lookup record of the given table.
func newLookup(table string, n Named) (any, *Named, *uint) {
	switch table {
	case TableSpellSchools:
		r := &SpellSchool{Named: n}
		return r, &r.Named, &r.ID
	case TableSpellSubSchools:
		r := &SpellSubSchool{Named: n}
		return r, &r.Named, &r.ID
	case TableSpellDescriptors:
		r := &SpellDescriptor{Named: n}
		return r, &r.Named, &r.ID
	case TableFeatCategories:
		r := &FeatCategory{Named: n}
		return r, &r.Named, &r.ID
	case TableItemSlots:
		r := &ItemSlot{Named: n}
		return r, &r.Named, &r.ID
	case TableItemProperties:
		r := &ItemProperty{Named: n}
		return r, &r.Named, &r.ID
	case tableItemAuraTypes:
		r := &ItemAuraType{Named: n}
		return r, &r.Named, &r.ID
	case tableItemActivationTypes:
		r := &ItemActivationType{Named: n}
		return r, &r.Named, &r.ID
	case TableLanguages:
		r := &Language{Named: n}
		return r, &r.Named, &r.ID
	case tableRaceSizes:
		r := &RaceSize{Named: n}
		return r, &r.Named, &r.ID
	case tableRaceSpeedTypes:
		r := &RaceSpeedType{Named: n}
		return r, &r.Named, &r.ID
	case tableMonsterTypes:
		r := &MonsterType{Named: n}
		return r, &r.Named, &r.ID
	default:
		r := &MonsterSubtype{Named: n}
		return r, &r.Named, &r.ID
	}
}
