// Package boamp holds the fixed domain data for the BOAMP dataset: the
// training/apprenticeship preset, the curated keyword buckets, the CPV
// catalog subset and the Île-de-France department list.
package boamp

import "strings"

// TrainingTerms is the fixed keyword disjunction injected by the training
// preset. Quoted phrases are kept verbatim so the provider matches them as
// phrases.
var TrainingTerms = []string{
	"formation",
	`"formation professionnelle"`,
	"apprentissage",
	`"formation continue"`,
	`"actions de formation"`,
}

// TrainingCPVWhitelist is the curated list of CPV codes considered training.
var TrainingCPVWhitelist = []string{
	"80500000", // Services de formation
	"80510000", // Services de formation spécialisés
	"80533100", // Formation en technologies de l'information
	"80570000", // Services de formation continue
	"80000000", // Enseignement et formation générale
	"80553000", // Formation à distance
	"79632000", // Services de formation et de conseil en gestion du personnel
	"79952000", // Organisation de séminaires / conférences
}

// TrainingServiceCategory is the EU service category signaling professional
// training, enforced as an equality clause by the training preset.
const TrainingServiceCategory = "24"

// CPVEntry describes one CPV code for the reference catalog endpoint.
type CPVEntry struct {
	Code        string `json:"code"`
	Domain      string `json:"domaine"`
	Description string `json:"description"`
}

// CPVCatalog is the human-friendly subset of CPV codes focused on training.
var CPVCatalog = []CPVEntry{
	{Code: "80500000", Domain: "Formation professionnelle", Description: "Services de formation"},
	{Code: "80510000", Domain: "Formation du personnel", Description: "Services de formation spécialisés"},
	{Code: "80533100", Domain: "Formation en informatique", Description: "Formation en technologies de l'information"},
	{Code: "80570000", Domain: "Formation continue", Description: "Services de formation continue"},
	{Code: "80000000", Domain: "Enseignement et formation", Description: "Enseignement et formation générale"},
	{Code: "80553000", Domain: "Formation à distance", Description: "Formation à distance"},
	{Code: "79632000", Domain: "Conseil en formation", Description: "Services de formation et de conseil en gestion du personnel"},
	{Code: "79952000", Domain: "Événements pédagogiques", Description: "Organisation de séminaires / conférences"},
}

// Department is a selectable department filter entry.
type Department struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// IDFDepartments is the curated Île-de-France department list.
var IDFDepartments = []Department{
	{Code: "75", Name: "75 – Paris"},
	{Code: "77", Name: "77 – Seine-et-Marne"},
	{Code: "78", Name: "78 – Yvelines"},
	{Code: "91", Name: "91 – Essonne"},
	{Code: "92", Name: "92 – Hauts-de-Seine"},
	{Code: "93", Name: "93 – Seine-Saint-Denis"},
	{Code: "94", Name: "94 – Val-de-Marne"},
	{Code: "95", Name: "95 – Val d'Oise"},
}

// KeywordBuckets are named bundles of search terms users can toggle instead
// of typing keywords by hand.
var KeywordBuckets = map[string][]string{
	"UX/UI": {
		"UX", "UI", "design d'interface", "recherche utilisateur",
		"prototypage", "Figma", "ergonomie",
	},
	"3D / Motion":    {"3D", "motion design", "animation", "After Effects", "Cinema 4D", "Blender"},
	"Unity / Unreal": {"Unity", "Unreal", "jeu vidéo", "temps réel", "VR", "AR", "XR"},
	"IA créatives": {
		"intelligence artificielle", "IA générative", "Stable Diffusion",
		"Midjourney", "prompt", "création assistée",
	},
	"Data / BI": {"data", "Power BI", "Excel avancé", "Tableau", "analyse de données", "visualisation"},
	"Dev Web":   {"développement web", "JavaScript", "TypeScript", "React", "Next.js", "Node.js"},
	"Marketing digital": {
		"marketing digital", "SEO", "SEA", "social media", "campagnes", "automation",
	},
	"Soft skills / Management": {
		"management", "prise de parole", "communication",
		"gestion de projet", "agilité", "scrum",
	},
}

// ComposeKeywords assembles the final text query from manual input, selected
// keyword buckets and the training terms. The OR composition happens at the
// keyword-language level, not as a structural clause.
func ComposeKeywords(manual string, selectedBuckets []string, useTraining bool) string {
	var bucketTerms []string
	for _, name := range selectedBuckets {
		bucketTerms = append(bucketTerms, KeywordBuckets[name]...)
	}

	var parts []string
	if strings.TrimSpace(manual) != "" {
		parts = append(parts, manual)
	}
	if expr := joinNonEmpty(bucketTerms); expr != "" {
		parts = append(parts, expr)
	}
	if useTraining {
		parts = append(parts, joinNonEmpty(TrainingTerms))
	}
	return strings.Join(parts, " OR ")
}

func joinNonEmpty(terms []string) string {
	kept := terms[:0:0]
	for _, t := range terms {
		if strings.TrimSpace(t) != "" {
			kept = append(kept, t)
		}
	}
	return strings.Join(kept, " OR ")
}
