package catalog

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Table names referenced by filter sets and raw queries.
const (
	TableEditions             = "dnd_editions"
	TableRulebooks            = "rulebooks"
	TableCharacterClasses     = "character_classes"
	TableClassVariants        = "character_class_variants"
	TableSkills               = "skills"
	TableRaces                = "races"
	TableRaceTypes            = "race_types"
	TableLanguages            = "languages"
	TableMonsters             = "monsters"
	TableSpells               = "spells"
	TableSpellSchools         = "spell_schools"
	TableSpellSubSchools      = "spell_sub_schools"
	TableSpellDescriptors     = "spell_descriptors"
	TableSpellDescriptorLinks = "spell_descriptor_links"
	TableSpellClassLevels     = "spell_class_levels"
	TableSpellDomainLevels    = "spell_domain_levels"
	TableDomains              = "domains"
	TableDomainVariants       = "domain_variants"
	TableDeities              = "deities"
	TableFeats                = "feats"
	TableFeatCategories       = "feat_categories"
	TableFeatCategoryLinks    = "feat_category_links"
	TableFeatPrerequisites    = "feat_prerequisites"
	TableSpecialPrerequisites = "special_feat_prerequisites"
	TableItems                = "items"
	TableItemSlots            = "item_slots"
	TableItemProperties       = "item_properties"
	TableItemPropertyLinks    = "item_property_links"
	TableItemRequirements     = "item_requirements"
	TableRules                = "rules"
	TableNewsEntries          = "news_entries"
	TableStaticPages          = "static_pages"
	TableCurators             = "curators"

	tableRaceSizes           = "race_sizes"
	tableRaceSpeedTypes      = "race_speed_types"
	tableMonsterTypes        = "monster_types"
	tableMonsterSubtypes     = "monster_subtypes"
	tableItemAuraTypes       = "item_aura_types"
	tableItemActivationTypes = "item_activation_types"
)

// Edition is a ruleset version grouping rulebooks.
type Edition struct {
	Model
	Named
	System    string     `gorm:"size:64" json:"system"`
	Rulebooks []Rulebook `gorm:"foreignKey:EditionID" json:"rulebooks,omitempty"`
}

func (Edition) TableName() string { return TableEditions }

// Rulebook is a sourcebook; every content record belongs to exactly one.
type Rulebook struct {
	Model
	Named
	Abbreviation string   `gorm:"size:16" json:"abbreviation,omitempty"`
	Year         string   `gorm:"size:8" json:"year,omitempty"`
	EditionID    uint     `gorm:"not null;index" json:"edition_id"`
	Edition      *Edition `json:"edition,omitempty"`
}

func (Rulebook) TableName() string { return TableRulebooks }

// CharacterClass is the edition-independent identity of a class.
type CharacterClass struct {
	Model
	Named
	Prestige         bool                    `gorm:"not null;default:false" json:"prestige"`
	ShortDescription string                  `gorm:"type:text" json:"short_description,omitempty"`
	Variants         []CharacterClassVariant `json:"variants,omitempty"`
}

func (CharacterClass) TableName() string { return TableCharacterClasses }

// CharacterClassVariant is a class as printed in one rulebook.
type CharacterClassVariant struct {
	Model
	CharacterClassID uint                        `gorm:"not null;index" json:"character_class_id"`
	CharacterClass   *CharacterClass             `json:"character_class,omitempty"`
	RulebookID       uint                        `gorm:"not null;index" json:"rulebook_id"`
	Rulebook         *Rulebook                   `json:"rulebook,omitempty"`
	Page             *int                        `json:"page,omitempty"`
	HitDie           *int                        `json:"hit_die,omitempty"`
	SkillPoints      *int                        `json:"skill_points,omitempty"`
	RequiredBAB      *int                        `gorm:"column:required_bab" json:"required_bab,omitempty"`
	Alignment        string                      `gorm:"size:256" json:"alignment,omitempty"`
	ClassFeatures    string                      `gorm:"type:text" json:"class_features,omitempty"`
	Requirements     string                      `gorm:"type:text" json:"requirements,omitempty"`
	ClassSkills      []Skill                     `gorm:"many2many:class_variant_skills;joinForeignKey:VariantID;joinReferences:SkillID" json:"class_skills,omitempty"`
	RequiredFeats    []ClassVariantRequiresFeat  `gorm:"foreignKey:VariantID" json:"required_feats,omitempty"`
	RequiredRaces    []ClassVariantRequiresRace  `gorm:"foreignKey:VariantID" json:"required_races,omitempty"`
	RequiredSkills   []ClassVariantRequiresSkill `gorm:"foreignKey:VariantID" json:"required_skills,omitempty"`
}

func (CharacterClassVariant) TableName() string { return TableClassVariants }

// ClassVariantRequiresFeat is a feat required to enter a (prestige) class.
type ClassVariantRequiresFeat struct {
	Model
	VariantID uint   `gorm:"not null;index" json:"-"`
	FeatID    uint   `gorm:"not null" json:"feat_id"`
	Feat      *Feat  `json:"feat,omitempty"`
	Extra     string `gorm:"size:64" json:"extra,omitempty"`
}

// ClassVariantRequiresRace is a race required to enter a class.
type ClassVariantRequiresRace struct {
	Model
	VariantID uint   `gorm:"not null;index" json:"-"`
	RaceID    uint   `gorm:"not null" json:"race_id"`
	Race      *Race  `json:"race,omitempty"`
	Extra     string `gorm:"size:64" json:"extra,omitempty"`
}

// ClassVariantRequiresSkill is a skill rank required to enter a class.
type ClassVariantRequiresSkill struct {
	Model
	VariantID uint   `gorm:"not null;index" json:"-"`
	SkillID   uint   `gorm:"not null" json:"skill_id"`
	Skill     *Skill `json:"skill,omitempty"`
	Ranks     int    `json:"ranks"`
	Extra     string `gorm:"size:64" json:"extra,omitempty"`
}

// Base ability of a skill.
const (
	BaseSkillSTR  = "STR"
	BaseSkillCON  = "CON"
	BaseSkillDEX  = "DEX"
	BaseSkillINT  = "INT"
	BaseSkillWIS  = "WIS"
	BaseSkillCHA  = "CHA"
	BaseSkillNone = "None"
)

// Skill is a character skill.
type Skill struct {
	Model
	Named
	BaseSkill         string `gorm:"size:4" json:"base_skill,omitempty"`
	TrainedOnly       bool   `gorm:"not null;default:false" json:"trained_only"`
	ArmorCheckPenalty bool   `gorm:"not null;default:false" json:"armor_check_penalty"`
	Description       string `gorm:"type:text" json:"description,omitempty"`
}

func (Skill) TableName() string { return TableSkills }

// SkillVariant is a skill as described by one rulebook.
type SkillVariant struct {
	Model
	SkillID     uint      `gorm:"not null;index" json:"skill_id"`
	Skill       *Skill    `json:"skill,omitempty"`
	RulebookID  uint      `gorm:"not null;index" json:"rulebook_id"`
	Rulebook    *Rulebook `json:"rulebook,omitempty"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
}

// Progression qualities of race types.
const (
	ProgressionGood    = "GOOD"
	ProgressionAverage = "AVERAGE"
	ProgressionPoor    = "POOR"
)

// RaceType is a creature type such as Humanoid or Outsider.
type RaceType struct {
	Model
	Named
	HitDieSize         int    `json:"hit_die_size"`
	BaseAttackType     string `gorm:"size:8" json:"base_attack_type"`
	BaseFortSaveType   string `gorm:"size:8" json:"base_fort_save_type"`
	BaseReflexSaveType string `gorm:"size:8" json:"base_reflex_save_type"`
	BaseWillSaveType   string `gorm:"size:8" json:"base_will_save_type"`
}

func (RaceType) TableName() string { return TableRaceTypes }

// RaceSize is a creature size category.
type RaceSize struct {
	Model
	Named
	Order int `gorm:"column:size_order" json:"order"`
}

// RaceSpeedType is a movement mode, e.g. fly with maneuverability in Extra.
type RaceSpeedType struct {
	Model
	Named
	Extra string `gorm:"size:32" json:"extra,omitempty"`
}

// Language is a spoken or written language.
type Language struct {
	Model
	Named
	Description string `gorm:"type:text" json:"description,omitempty"`
}

func (Language) TableName() string { return TableLanguages }

// Race is a playable race.
type Race struct {
	Model
	Named
	RulebookID         uint                        `gorm:"not null;index" json:"rulebook_id"`
	Rulebook           *Rulebook                   `json:"rulebook,omitempty"`
	Page               *int                        `json:"page,omitempty"`
	Str                int                         `json:"str"`
	Dex                int                         `json:"dex"`
	Con                int                         `json:"con"`
	Int                int                         `json:"int"`
	Wis                int                         `json:"wis"`
	Cha                int                         `json:"cha"`
	LevelAdjustment    int                         `json:"level_adjustment"`
	RaceTypeID         *uint                       `json:"race_type_id,omitempty"`
	RaceType           *RaceType                   `json:"race_type,omitempty"`
	SizeID             *uint                       `json:"size_id,omitempty"`
	Size               *RaceSize                   `json:"size,omitempty"`
	Description        string                      `gorm:"type:text" json:"description,omitempty"`
	Speeds             []RaceSpeed                 `json:"speeds,omitempty"`
	FavoredClasses     []RaceFavoredCharacterClass `json:"favored_classes,omitempty"`
	AutomaticLanguages []Language                  `gorm:"many2many:race_automatic_languages;joinForeignKey:RaceID;joinReferences:LanguageID" json:"automatic_languages,omitempty"`
	BonusLanguages     []Language                  `gorm:"many2many:race_bonus_languages;joinForeignKey:RaceID;joinReferences:LanguageID" json:"bonus_languages,omitempty"`
}

func (Race) TableName() string { return TableRaces }

// RaceSpeed is one ordered movement speed of a race.
type RaceSpeed struct {
	Model
	RaceID   uint           `gorm:"not null;index" json:"-"`
	TypeID   uint           `gorm:"not null" json:"type_id"`
	Type     *RaceSpeedType `json:"type,omitempty"`
	Speed    int            `json:"speed"`
	Position int            `json:"position"`
}

// RaceFavoredCharacterClass is a favored class of a race.
type RaceFavoredCharacterClass struct {
	Model
	RaceID           uint            `gorm:"not null;index" json:"-"`
	CharacterClassID uint            `gorm:"not null" json:"character_class_id"`
	CharacterClass   *CharacterClass `json:"character_class,omitempty"`
	Extra            string          `gorm:"size:32" json:"extra,omitempty"`
}

// MonsterType is the creature type of a monster.
type MonsterType struct {
	Model
	Named
}

// MonsterSubtype is a creature subtype of a monster.
type MonsterSubtype struct {
	Model
	Named
}

// Monster is a creature statistics block.
type Monster struct {
	Model
	Named
	RulebookID       uint              `gorm:"not null;index" json:"rulebook_id"`
	Rulebook         *Rulebook         `json:"rulebook,omitempty"`
	Page             *int              `json:"page,omitempty"`
	TypeID           *uint             `json:"type_id,omitempty"`
	Type             *MonsterType      `json:"type,omitempty"`
	Subtypes         []MonsterSubtype  `gorm:"many2many:monster_subtype_links;joinForeignKey:MonsterID;joinReferences:SubtypeID" json:"subtypes,omitempty"`
	SizeID           *uint             `json:"size_id,omitempty"`
	Size             *RaceSize         `json:"size,omitempty"`
	Abilities        datatypes.JSON    `json:"abilities,omitempty"`
	SpecialQualities string            `gorm:"type:text" json:"special_qualities,omitempty"`
	Description      string            `gorm:"type:text" json:"description,omitempty"`
	Speeds           []MonsterSpeed    `json:"speeds,omitempty"`
	Feats            []MonsterHasFeat  `json:"feats,omitempty"`
	Skills           []MonsterHasSkill `json:"skills,omitempty"`
}

func (Monster) TableName() string { return TableMonsters }

// MonsterSpeed is one movement speed of a monster.
type MonsterSpeed struct {
	Model
	MonsterID uint           `gorm:"not null;index" json:"-"`
	TypeID    uint           `gorm:"not null" json:"type_id"`
	Type      *RaceSpeedType `json:"type,omitempty"`
	Speed     int            `json:"speed"`
}

// MonsterHasFeat associates a feat with a monster.
type MonsterHasFeat struct {
	Model
	MonsterID uint   `gorm:"not null;index" json:"-"`
	FeatID    uint   `gorm:"not null" json:"feat_id"`
	Feat      *Feat  `json:"feat,omitempty"`
	Extra     string `gorm:"size:64" json:"extra,omitempty"`
}

// MonsterHasSkill associates skill ranks with a monster.
type MonsterHasSkill struct {
	Model
	MonsterID uint   `gorm:"not null;index" json:"-"`
	SkillID   uint   `gorm:"not null" json:"skill_id"`
	Skill     *Skill `json:"skill,omitempty"`
	Ranks     int    `json:"ranks"`
	Extra     string `gorm:"size:64" json:"extra,omitempty"`
}

// SpellSchool is a school of magic.
type SpellSchool struct {
	Model
	Named
}

func (SpellSchool) TableName() string { return TableSpellSchools }

// SpellSubSchool is a sub-school of magic.
type SpellSubSchool struct {
	Model
	Named
}

func (SpellSubSchool) TableName() string { return TableSpellSubSchools }

// SpellDescriptor is a spell descriptor such as Fire or Evil.
type SpellDescriptor struct {
	Model
	Named
}

func (SpellDescriptor) TableName() string { return TableSpellDescriptors }

// Spell is a spell description with its class and domain levels.
type Spell struct {
	Model
	Named
	RulebookID  uint              `gorm:"not null;index" json:"rulebook_id"`
	Rulebook    *Rulebook         `json:"rulebook,omitempty"`
	Page        *int              `json:"page,omitempty"`
	SchoolID    uint              `gorm:"not null;index" json:"school_id"`
	School      *SpellSchool      `json:"school,omitempty"`
	SubSchoolID *uint             `json:"sub_school_id,omitempty"`
	SubSchool   *SpellSubSchool   `json:"sub_school,omitempty"`
	Descriptors []SpellDescriptor `gorm:"many2many:spell_descriptor_links;joinForeignKey:SpellID;joinReferences:DescriptorID" json:"descriptors,omitempty"`

	VerbalComponent      bool `gorm:"not null;default:false" json:"verbal_component"`
	SomaticComponent     bool `gorm:"not null;default:false" json:"somatic_component"`
	MaterialComponent    bool `gorm:"not null;default:false" json:"material_component"`
	ArcaneFocusComponent bool `gorm:"not null;default:false" json:"arcane_focus_component"`
	DivineFocusComponent bool `gorm:"not null;default:false" json:"divine_focus_component"`
	XPComponent          bool `gorm:"column:xp_component;not null;default:false" json:"xp_component"`

	CastingTime     string             `gorm:"size:256" json:"casting_time,omitempty"`
	Range           string             `gorm:"column:spell_range;size:256" json:"range,omitempty"`
	Target          string             `gorm:"size:256" json:"target,omitempty"`
	Effect          string             `gorm:"size:256" json:"effect,omitempty"`
	Area            string             `gorm:"size:256" json:"area,omitempty"`
	Duration        string             `gorm:"size:256" json:"duration,omitempty"`
	SavingThrow     string             `gorm:"size:128" json:"saving_throw,omitempty"`
	SpellResistance string             `gorm:"size:64" json:"spell_resistance,omitempty"`
	Description     string             `gorm:"type:text" json:"description,omitempty"`
	ClassLevels     []SpellClassLevel  `json:"class_levels,omitempty"`
	DomainLevels    []SpellDomainLevel `json:"domain_levels,omitempty"`

	Verified         bool       `gorm:"not null;default:false;index" json:"verified"`
	VerifiedAuthorID *uint      `json:"verified_author_id,omitempty"`
	VerifiedAuthor   *Curator   `json:"verified_author,omitempty"`
	VerifiedTime     *time.Time `json:"verified_time,omitempty"`
}

func (Spell) TableName() string { return TableSpells }

// SpellClassLevel is the level of a spell on one class spell list.
type SpellClassLevel struct {
	Model
	SpellID          uint            `gorm:"not null;index" json:"-"`
	CharacterClassID uint            `gorm:"not null;index" json:"character_class_id"`
	CharacterClass   *CharacterClass `json:"character_class,omitempty"`
	Level            int             `gorm:"not null" json:"level"`
	Extra            string          `gorm:"size:32" json:"extra,omitempty"`
}

func (SpellClassLevel) TableName() string { return TableSpellClassLevels }

// SpellDomainLevel is the level of a spell in one domain.
type SpellDomainLevel struct {
	Model
	SpellID  uint    `gorm:"not null;index" json:"-"`
	DomainID uint    `gorm:"not null;index" json:"domain_id"`
	Domain   *Domain `json:"domain,omitempty"`
	Level    int     `gorm:"not null" json:"level"`
	Extra    string  `gorm:"size:32" json:"extra,omitempty"`
}

func (SpellDomainLevel) TableName() string { return TableSpellDomainLevels }

// Domain is a cleric domain granting powers and spells.
type Domain struct {
	Model
	Named
	Variants []DomainVariant `json:"variants,omitempty"`
}

func (Domain) TableName() string { return TableDomains }

// DomainVariant binds a domain to a rulebook and its deities.
type DomainVariant struct {
	Model
	DomainID     uint      `gorm:"not null;index" json:"domain_id"`
	Domain       *Domain   `json:"domain,omitempty"`
	RulebookID   uint      `gorm:"not null;index" json:"rulebook_id"`
	Rulebook     *Rulebook `json:"rulebook,omitempty"`
	Page         *int      `json:"page,omitempty"`
	Requirement  string    `gorm:"type:text" json:"requirement,omitempty"`
	GrantedPower string    `gorm:"type:text" json:"granted_power,omitempty"`
	Deities      []Deity   `gorm:"many2many:domain_variant_deities;joinForeignKey:VariantID;joinReferences:DeityID" json:"deities,omitempty"`
	OtherDeities []Deity   `gorm:"many2many:domain_variant_other_deities;joinForeignKey:VariantID;joinReferences:DeityID" json:"other_deities,omitempty"`
}

func (DomainVariant) TableName() string { return TableDomainVariants }

// Deity is a god worshipped in the setting.
type Deity struct {
	Model
	Named
	Alignment   string `gorm:"size:32" json:"alignment,omitempty"`
	Description string `gorm:"type:text" json:"description,omitempty"`
}

func (Deity) TableName() string { return TableDeities }

// FeatCategory groups feats, e.g. General or Metamagic.
type FeatCategory struct {
	Model
	Named
}

func (FeatCategory) TableName() string { return TableFeatCategories }

// Feat is a feat with its tagged prerequisites.
type Feat struct {
	Model
	Named
	RulebookID    uint               `gorm:"not null;index" json:"rulebook_id"`
	Rulebook      *Rulebook          `json:"rulebook,omitempty"`
	Page          *int               `json:"page,omitempty"`
	Description   string             `gorm:"type:text" json:"description,omitempty"`
	Benefit       string             `gorm:"type:text" json:"benefit,omitempty"`
	Special       string             `gorm:"type:text" json:"special,omitempty"`
	Normal        string             `gorm:"type:text" json:"normal,omitempty"`
	Categories    []FeatCategory     `gorm:"many2many:feat_category_links;joinForeignKey:FeatID;joinReferences:CategoryID" json:"categories,omitempty"`
	Prerequisites []FeatPrerequisite `gorm:"foreignKey:FeatID" json:"prerequisites,omitempty"`
}

func (Feat) TableName() string { return TableFeats }

// SpecialFeatPrerequisite is a catalogued named condition with a print format
// in which every %s is replaced by the value stored on the prerequisite.
type SpecialFeatPrerequisite struct {
	Model
	Named
	PrintFormat string `gorm:"size:64;not null" json:"print_format"`
}

func (SpecialFeatPrerequisite) TableName() string { return TableSpecialPrerequisites }

// Item types.
const (
	ItemTypeWondrous = "wondrous"
	ItemTypeArmor    = "armor"
	ItemTypeWeapon   = "weapon"
	ItemTypePotion   = "potion"
	ItemTypeRing     = "ring"
	ItemTypeRod      = "rod"
	ItemTypeScroll   = "scroll"
	ItemTypeStaff    = "staff"
	ItemTypeWand     = "wand"
	ItemTypeArtifact = "artifact"
)

// ItemSlot is the body slot occupied by a worn item.
type ItemSlot struct {
	Model
	Named
}

func (ItemSlot) TableName() string { return TableItemSlots }

// ItemAuraType is the aura strength of a magic item.
type ItemAuraType struct {
	Model
	Named
}

// ItemProperty is an armor or weapon special ability.
type ItemProperty struct {
	Model
	Named
}

func (ItemProperty) TableName() string { return TableItemProperties }

// ItemActivationType is how an item is used, e.g. command word.
type ItemActivationType struct {
	Model
	Named
}

// Item is a mundane or magic item.
type Item struct {
	Model
	Named
	RulebookID   uint                `gorm:"not null;index" json:"rulebook_id"`
	Rulebook     *Rulebook           `json:"rulebook,omitempty"`
	Page         *int                `json:"page,omitempty"`
	Type         string              `gorm:"size:16;index" json:"type"`
	PriceGP      *int                `gorm:"column:price_gp" json:"price_gp,omitempty"`
	PriceBonus   *int                `json:"price_bonus,omitempty"`
	BodySlotID   *uint               `json:"body_slot_id,omitempty"`
	BodySlot     *ItemSlot           `json:"body_slot,omitempty"`
	Properties   []ItemProperty      `gorm:"many2many:item_property_links;joinForeignKey:ItemID;joinReferences:PropertyID" json:"properties,omitempty"`
	AuraID       *uint               `json:"aura_id,omitempty"`
	Aura         *ItemAuraType       `json:"aura,omitempty"`
	AuraSchools  []SpellSchool       `gorm:"many2many:item_aura_schools;joinForeignKey:ItemID;joinReferences:SchoolID" json:"aura_schools,omitempty"`
	CasterLevel  *int                `json:"caster_level,omitempty"`
	ActivationID *uint               `json:"activation_id,omitempty"`
	Activation   *ItemActivationType `json:"activation,omitempty"`
	Requirements []ItemRequirement   `gorm:"foreignKey:ItemID" json:"requirements,omitempty"`
	Description  string              `gorm:"type:text" json:"description,omitempty"`
}

func (Item) TableName() string { return TableItems }

// Rule is a rules article.
type Rule struct {
	Model
	Named
	RulebookID *uint     `json:"rulebook_id,omitempty"`
	Rulebook   *Rulebook `json:"rulebook,omitempty"`
	Page       *int      `json:"page,omitempty"`
	Body       string    `gorm:"type:text" json:"body,omitempty"`
}

func (Rule) TableName() string { return TableRules }

// NewsEntry is a site announcement.
type NewsEntry struct {
	Model
	Title     string    `gorm:"size:128;not null" json:"title"`
	Body      string    `gorm:"type:text" json:"body"`
	Published time.Time `gorm:"index" json:"published"`
	Enabled   bool      `gorm:"not null" json:"enabled"`
}

func (NewsEntry) TableName() string { return TableNewsEntries }

// BeforeSave stores publish times in UTC so that they compare and sort as text.
func (n *NewsEntry) BeforeSave(*gorm.DB) error {
	n.Published = n.Published.UTC()
	return nil
}

// StaticPage is a free-standing HTML page.
type StaticPage struct {
	Model
	Named
	Body string `gorm:"type:text" json:"body"`
}

func (StaticPage) TableName() string { return TableStaticPages }

// Curator is an account allowed to verify spells.
type Curator struct {
	Model
	Username     string `gorm:"size:64;not null;uniqueIndex" json:"username"`
	PasswordHash string `gorm:"size:128;not null" json:"-"`
	Active       bool   `gorm:"not null" json:"-"`
}

func (Curator) TableName() string { return TableCurators }

// Models lists every table of the schema in dependency order.
func Models() []any {
	return []any{
		&Curator{},
		&Edition{}, &Rulebook{},
		&Skill{}, &SkillVariant{},
		&Language{}, &RaceType{}, &RaceSize{}, &RaceSpeedType{},
		&CharacterClass{},
		&FeatCategory{}, &SpecialFeatPrerequisite{}, &Feat{}, &FeatPrerequisite{},
		&Race{}, &RaceSpeed{}, &RaceFavoredCharacterClass{},
		&CharacterClassVariant{}, &ClassVariantRequiresFeat{}, &ClassVariantRequiresRace{}, &ClassVariantRequiresSkill{},
		&MonsterType{}, &MonsterSubtype{}, &Monster{}, &MonsterSpeed{}, &MonsterHasFeat{}, &MonsterHasSkill{},
		&SpellSchool{}, &SpellSubSchool{}, &SpellDescriptor{},
		&Deity{}, &Domain{}, &DomainVariant{},
		&Spell{}, &SpellClassLevel{}, &SpellDomainLevel{},
		&ItemSlot{}, &ItemAuraType{}, &ItemProperty{}, &ItemActivationType{}, &Item{}, &ItemRequirement{},
		&Rule{},
		&NewsEntry{}, &StaticPage{},
	}
}
