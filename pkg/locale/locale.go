// Package locale picks the interface language and holds the texts the core
// hands to the user: the automatic task name and the confirmation and error
// messages. French is the fallback for any unrecognized code.
package locale

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
)

var (
	supported = []language.Tag{language.French, language.English}
	matcher   = language.NewMatcher(supported)
)

// Messages is the text set of one language.
type Messages struct {
	Tag             language.Tag
	DefaultTaskName string
	ConfirmDelete   string
	ConfirmMerge    string
	ConfirmClear    string
	MergeRejected   string
	AlreadyRunning  string
	Yes             string
	No              string
}

var catalog = map[language.Tag]Messages{
	language.French: {
		Tag:             language.French,
		DefaultTaskName: "Tâche créée automatiquement",
		ConfirmDelete:   "Voulez-vous supprimer la ou les tâches sélectionnées ?",
		ConfirmMerge:    "Voulez-vous fusionner les tâches sélectionnées ?",
		ConfirmClear:    "Voulez-vous supprimer TOUTES les tâches ?",
		MergeRejected:   "Fusion annulée : la durée totale (%s) excède %d heures.",
		AlreadyRunning:  "PTT est déjà en cours d'exécution.",
		Yes:             "o",
		No:              "n",
	},
	language.English: {
		Tag:             language.English,
		DefaultTaskName: "Task created automatically",
		ConfirmDelete:   "Delete the selected task(s)?",
		ConfirmMerge:    "Merge the selected tasks?",
		ConfirmClear:    "Delete ALL tasks?",
		MergeRejected:   "Merge cancelled: total duration (%s) exceeds %d hours.",
		AlreadyRunning:  "PTT is already running.",
		Yes:             "y",
		No:              "n",
	},
}

// Match maps a language code such as "fr_FR", "en-GB" or "en" to a supported
// language. Unknown or malformed codes map to French.
func Match(code string) language.Tag {
	tag, err := language.Parse(code)
	if err != nil {
		return language.French
	}
	_, index, confidence := matcher.Match(tag)
	if confidence == language.No {
		return language.French
	}
	return supported[index]
}

// For returns the messages of the language matching code.
func For(code string) Messages {
	return catalog[Match(code)]
}

// FormatMergeRejected renders the rejected merge message for a total and ceiling.
func (m Messages) FormatMergeRejected(total string, max time.Duration) string {
	return fmt.Sprintf(m.MergeRejected, total, int(max/time.Hour))
}
