// Package assessment scores the Huntington's disease rating instruments used
// in the neurology workflow: UHDRS motor, MMSE, PBA and TFC.
package assessment

import (
	"errors"
	"fmt"
	"sort"
)

// Instrument identifies a rating scale.
type Instrument string

const (
	UHDRSMotor Instrument = "uhdrs_motor"
	MMSE       Instrument = "mmse"
	PBA        Instrument = "pba"
	TFC        Instrument = "tfc"
)

var (
	ErrUnknownInstrument = errors.New("unknown assessment instrument")
	ErrUnknownItem       = errors.New("unknown assessment item")
	ErrOutOfRange        = errors.New("item score out of range")
)

// Item is a single scored question.
type Item struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Max   int    `json:"max"`
}

// Scores holds raw item values keyed by Item.Key.
type Scores map[string]int

// Sheet groups the item scores of every instrument filled in during a visit.
type Sheet map[Instrument]Scores

// Result is the outcome of scoring one instrument.
type Result struct {
	Instrument Instrument `json:"instrument"`
	Total      int        `json:"total"`
	Max        int        `json:"max"`
	Answered   int        `json:"answered"`
	Complete   bool       `json:"complete"`
}

func motorItem(key, label string) Item { return Item{Key: key, Label: label, Max: 4} }

var catalog = map[Instrument][]Item{
	UHDRSMotor: {
		motorItem("ocular_pursuit_h", "Ocular pursuit, horizontal"),
		motorItem("ocular_pursuit_v", "Ocular pursuit, vertical"),
		motorItem("saccade_init_h", "Saccade initiation, horizontal"),
		motorItem("saccade_init_v", "Saccade initiation, vertical"),
		motorItem("saccade_vel_h", "Saccade velocity, horizontal"),
		motorItem("saccade_vel_v", "Saccade velocity, vertical"),
		motorItem("dysarthria", "Dysarthria"),
		motorItem("tongue_protrusion", "Tongue protrusion"),
		motorItem("dystonia_trunk", "Maximal dystonia, trunk"),
		motorItem("dystonia_rue", "Maximal dystonia, right upper extremity"),
		motorItem("dystonia_lue", "Maximal dystonia, left upper extremity"),
		motorItem("dystonia_rle", "Maximal dystonia, right lower extremity"),
		motorItem("dystonia_lle", "Maximal dystonia, left lower extremity"),
		motorItem("chorea_face", "Maximal chorea, face"),
		motorItem("chorea_bol", "Maximal chorea, buccal-oral-lingual"),
		motorItem("chorea_trunk", "Maximal chorea, trunk"),
		motorItem("chorea_rue", "Maximal chorea, right upper extremity"),
		motorItem("chorea_lue", "Maximal chorea, left upper extremity"),
		motorItem("chorea_rle", "Maximal chorea, right lower extremity"),
		motorItem("chorea_lle", "Maximal chorea, left lower extremity"),
		motorItem("gait", "Gait"),
		motorItem("tandem", "Tandem walking"),
		motorItem("retropulsion", "Retropulsion pull test"),
		motorItem("finger_taps_r", "Finger taps, right"),
		motorItem("finger_taps_l", "Finger taps, left"),
		motorItem("pro_sup_r", "Pronate/supinate hands, right"),
		motorItem("pro_sup_l", "Pronate/supinate hands, left"),
		motorItem("luria", "Luria fist-hand-palm sequence"),
		motorItem("rigidity_r", "Rigidity, right arm"),
		motorItem("rigidity_l", "Rigidity, left arm"),
		motorItem("bradykinesia", "Bradykinesia, body"),
	},
	MMSE: {
		{Key: "ori_time", Label: "Orientation to time", Max: 5},
		{Key: "ori_space", Label: "Orientation to place", Max: 5},
		{Key: "registration", Label: "Registration of three words", Max: 3},
		{Key: "recall", Label: "Delayed recall of three words", Max: 3},
		{Key: "serial7", Label: "Serial subtraction", Max: 5},
		{Key: "digits_back", Label: "Digits backwards", Max: 3},
		{Key: "naming", Label: "Naming", Max: 2},
		{Key: "repetition", Label: "Phrase repetition", Max: 1},
		{Key: "abstraction", Label: "Abstraction", Max: 2},
		{Key: "command3", Label: "Three-stage command", Max: 3},
		{Key: "reading", Label: "Reading and obeying", Max: 1},
		{Key: "writing", Label: "Writing a sentence", Max: 1},
		{Key: "copying", Label: "Copying a design", Max: 1},
	},
	PBA: {
		motorItem("sad_mood", "Depressed mood"),
		motorItem("guilt", "Low self-esteem / guilt"),
		motorItem("anxiety", "Anxiety"),
		motorItem("suicidal", "Suicidal ideation"),
		motorItem("aggressive", "Aggressive behavior"),
		motorItem("irritable", "Irritable behavior"),
		motorItem("obsessions", "Obsessions"),
		motorItem("compulsions", "Compulsions"),
		motorItem("delusions", "Delusions"),
		motorItem("hallucinations", "Hallucinations"),
	},
	TFC: {
		{Key: "occupation", Label: "Occupation", Max: 3},
		{Key: "finances", Label: "Finances", Max: 3},
		{Key: "chores", Label: "Domestic chores", Max: 2},
		{Key: "adl", Label: "Activities of daily living", Max: 3},
		{Key: "care_level", Label: "Care level", Max: 2},
	},
}

// Instruments lists the supported scales in a stable order.
func Instruments() []Instrument {
	return []Instrument{UHDRSMotor, MMSE, PBA, TFC}
}

// Items returns the item definitions of an instrument.
func Items(inst Instrument) ([]Item, error) {
	items, ok := catalog[inst]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownInstrument, inst)
	}
	return items, nil
}

// MaxScore is the highest total an instrument can reach.
func MaxScore(inst Instrument) int {
	total := 0
	for _, it := range catalog[inst] {
		total += it.Max
	}
	return total
}

func itemIndex(inst Instrument) (map[string]Item, error) {
	items, err := Items(inst)
	if err != nil {
		return nil, err
	}
	idx := make(map[string]Item, len(items))
	for _, it := range items {
		idx[it.Key] = it
	}
	return idx, nil
}

// Score validates the raw values and sums them. Missing items count as zero
// and leave the result incomplete.
func Score(inst Instrument, scores Scores) (Result, error) {
	idx, err := itemIndex(inst)
	if err != nil {
		return Result{}, err
	}

	keys := make([]string, 0, len(scores))
	for k := range scores {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	total := 0
	for _, k := range keys {
		item, ok := idx[k]
		if !ok {
			return Result{}, fmt.Errorf("%s: %w: %q", inst, ErrUnknownItem, k)
		}
		v := scores[k]
		if v < 0 || v > item.Max {
			return Result{}, fmt.Errorf("%s.%s = %d (0-%d): %w", inst, k, v, item.Max, ErrOutOfRange)
		}
		total += v
	}

	return Result{
		Instrument: inst,
		Total:      total,
		Max:        MaxScore(inst),
		Answered:   len(scores),
		Complete:   len(scores) == len(idx),
	}, nil
}

// Clamp forces every known item into its 0..max range and drops unknown keys.
func Clamp(inst Instrument, scores Scores) Scores {
	idx, err := itemIndex(inst)
	if err != nil {
		return Scores{}
	}
	out := make(Scores, len(scores))
	for k, v := range scores {
		item, ok := idx[k]
		if !ok {
			continue
		}
		switch {
		case v < 0:
			v = 0
		case v > item.Max:
			v = item.Max
		}
		out[k] = v
	}
	return out
}

// ScoreSheet scores every instrument present in the sheet.
func ScoreSheet(sheet Sheet) (map[Instrument]Result, error) {
	results := make(map[Instrument]Result, len(sheet))
	for _, inst := range Instruments() {
		scores, ok := sheet[inst]
		if !ok {
			continue
		}
		res, err := Score(inst, scores)
		if err != nil {
			return nil, err
		}
		results[inst] = res
	}
	for inst := range sheet {
		if _, ok := catalog[inst]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownInstrument, inst)
		}
	}
	return results, nil
}

// TFCStage maps a Total Functional Capacity score to the Shoulson-Fahn stage.
func TFCStage(total int) string {
	switch {
	case total >= 11:
		return "I"
	case total >= 7:
		return "II"
	case total >= 3:
		return "III"
	case total >= 1:
		return "IV"
	default:
		return "V"
	}
}
