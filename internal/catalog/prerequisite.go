package catalog

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"gorm.io/gorm"
)

// Feat prerequisite kinds.
const (
	PrerequisiteText    = "text"
	PrerequisiteSpecial = "special"
	PrerequisiteSkill   = "skill"
	PrerequisiteFeat    = "feat"
)

// Item requirement kinds.
const (
	RequirementText  = "text"
	RequirementSpell = "spell"
	RequirementFeat  = "feat"
)

// Renderer is implemented by every tagged requirement variant.
type Renderer interface {
	Render() string
}

// FeatPrerequisite is one condition gating a feat. Kind selects which of the
// payload columns are meaningful.
type FeatPrerequisite struct {
	Model
	FeatID uint   `gorm:"not null;index" json:"-"`
	Kind   string `gorm:"size:16;not null;index" json:"kind"`

	Text string `gorm:"type:text" json:"text,omitempty"`

	SpecialID *uint                    `json:"special_id,omitempty"`
	Special   *SpecialFeatPrerequisite `json:"special,omitempty"`
	Value     string                   `gorm:"size:64" json:"value,omitempty"`

	SkillID    *uint  `json:"skill_id,omitempty"`
	Skill      *Skill `json:"skill,omitempty"`
	SkillRanks int    `json:"skill_ranks,omitempty"`

	RequiredFeatID *uint `json:"required_feat_id,omitempty"`
	RequiredFeat   *Feat `gorm:"foreignKey:RequiredFeatID" json:"required_feat,omitempty"`

	Rendered string `gorm:"-" json:"rendered"`
}

func (FeatPrerequisite) TableName() string { return TableFeatPrerequisites }

// TextPrerequisite builds a free-text prerequisite.
func TextPrerequisite(text string) FeatPrerequisite {
	return FeatPrerequisite{Kind: PrerequisiteText, Text: text}
}

// SpecialPrerequisite builds a prerequisite formatted by a special entry.
func SpecialPrerequisite(special *SpecialFeatPrerequisite, value string) FeatPrerequisite {
	p := FeatPrerequisite{Kind: PrerequisiteSpecial, Special: special, Value: value}
	if special != nil && special.ID != 0 {
		p.SpecialID = &special.ID
	}
	return p
}

// SkillPrerequisite builds a prerequisite on skill ranks.
func SkillPrerequisite(skill *Skill, ranks int) FeatPrerequisite {
	p := FeatPrerequisite{Kind: PrerequisiteSkill, Skill: skill, SkillRanks: ranks}
	if skill != nil && skill.ID != 0 {
		p.SkillID = &skill.ID
	}
	return p
}

// FeatRequirement builds a prerequisite on another feat.
func FeatRequirement(feat *Feat) FeatPrerequisite {
	p := FeatPrerequisite{Kind: PrerequisiteFeat, RequiredFeat: feat}
	if feat != nil && feat.ID != 0 {
		p.RequiredFeatID = &feat.ID
	}
	return p
}

// Render returns the prerequisite as it is printed in a rulebook. Referenced
// records must be loaded; a missing reference renders as an empty string.
func (p FeatPrerequisite) Render() string {
	switch p.Kind {
	case PrerequisiteText:
		return p.Text
	case PrerequisiteSpecial:
		if p.Special == nil {
			return ""
		}
		return strings.ReplaceAll(p.Special.PrintFormat, "%s", p.Value)
	case PrerequisiteSkill:
		if p.Skill == nil {
			return ""
		}
		return fmt.Sprintf("%s %d ranks", p.Skill.Name, p.SkillRanks)
	case PrerequisiteFeat:
		if p.RequiredFeat == nil {
			return ""
		}
		return p.RequiredFeat.Name
	default:
		return ""
	}
}

// BeforeSave rejects rows whose payload does not match their kind.
func (p *FeatPrerequisite) BeforeSave(*gorm.DB) error {
	switch p.Kind {
	case PrerequisiteText:
		if strings.TrimSpace(p.Text) == "" {
			return eris.New("text prerequisite requires text")
		}
	case PrerequisiteSpecial:
		if p.SpecialID == nil && p.Special == nil {
			return eris.New("special prerequisite requires a special entry")
		}
	case PrerequisiteSkill:
		if p.SkillID == nil && p.Skill == nil {
			return eris.New("skill prerequisite requires a skill")
		}
	case PrerequisiteFeat:
		if p.RequiredFeatID == nil && p.RequiredFeat == nil {
			return eris.New("feat prerequisite requires a feat")
		}
	default:
		return eris.Errorf("unknown prerequisite kind %q", p.Kind)
	}
	return nil
}

// ItemRequirement is one condition for crafting an item.
type ItemRequirement struct {
	Model
	ItemID uint   `gorm:"not null;index" json:"-"`
	Kind   string `gorm:"size:16;not null;index" json:"kind"`

	Text string `gorm:"type:text" json:"text,omitempty"`

	SpellID *uint  `json:"spell_id,omitempty"`
	Spell   *Spell `json:"spell,omitempty"`

	FeatID *uint `json:"feat_id,omitempty"`
	Feat   *Feat `json:"feat,omitempty"`

	Rendered string `gorm:"-" json:"rendered"`
}

func (ItemRequirement) TableName() string { return TableItemRequirements }

// Render returns the requirement text.
func (r ItemRequirement) Render() string {
	switch r.Kind {
	case RequirementText:
		return r.Text
	case RequirementSpell:
		if r.Spell == nil {
			return ""
		}
		return r.Spell.Name
	case RequirementFeat:
		if r.Feat == nil {
			return ""
		}
		return r.Feat.Name
	default:
		return ""
	}
}

// BeforeSave rejects rows whose payload does not match their kind.
func (r *ItemRequirement) BeforeSave(*gorm.DB) error {
	switch r.Kind {
	case RequirementText:
		if strings.TrimSpace(r.Text) == "" {
			return eris.New("text requirement requires text")
		}
	case RequirementSpell:
		if r.SpellID == nil && r.Spell == nil {
			return eris.New("spell requirement requires a spell")
		}
	case RequirementFeat:
		if r.FeatID == nil && r.Feat == nil {
			return eris.New("feat requirement requires a feat")
		}
	default:
		return eris.Errorf("unknown requirement kind %q", r.Kind)
	}
	return nil
}

// Rendered SQL of the tagged collections. Each expression yields the same
// string as the matching Render method.
const (
	featPrerequisiteTextSQL = `CASE feat_prerequisites.kind` +
		` WHEN 'text' THEN feat_prerequisites.text` +
		` WHEN 'special' THEN REPLACE(special_feat_prerequisites.print_format, '%s', feat_prerequisites.value)` +
		` WHEN 'skill' THEN prerequisite_skills.name || ' ' || feat_prerequisites.skill_ranks || ' ranks'` +
		` WHEN 'feat' THEN required_feats.name END`

	itemRequirementTextSQL = `CASE item_requirements.kind` +
		` WHEN 'text' THEN item_requirements.text` +
		` WHEN 'spell' THEN required_spells.name` +
		` WHEN 'feat' THEN required_feats.name END`
)

var (
	featPrerequisiteJoins = []string{
		"LEFT JOIN special_feat_prerequisites ON special_feat_prerequisites.id = feat_prerequisites.special_id",
		"LEFT JOIN skills prerequisite_skills ON prerequisite_skills.id = feat_prerequisites.skill_id",
		"LEFT JOIN feats required_feats ON required_feats.id = feat_prerequisites.required_feat_id",
	}
	itemRequirementJoins = []string{
		"LEFT JOIN spells required_spells ON required_spells.id = item_requirements.spell_id",
		"LEFT JOIN feats required_feats ON required_feats.id = item_requirements.feat_id",
	}
)

func renderPrerequisites(prerequisites []FeatPrerequisite) {
	for i := range prerequisites {
		prerequisites[i].Rendered = prerequisites[i].Render()
	}
}

func renderRequirements(requirements []ItemRequirement) {
	for i := range requirements {
		requirements[i].Rendered = requirements[i].Render()
	}
}
