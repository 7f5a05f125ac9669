// Copyright (c) 2025 DaBaiHeDaBaiCai.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package stimuli loads and orders the stimulus list.

# File Format

The stimulus list is a CSV file with a header row. Recognized columns:

	version         experiment version the row belongs to (cn or jp)
	label           stimulus label used in exported data
	stimulus_label  fallback when label is absent
	person          speaker identity shown with the stimulus
	url             audio file location served to the frontend

Unknown columns are ignored. A row with neither label nor stimulus_label
gets a positional "itemN" label from FillLabels, assigned after the
presentation order is drawn so N reflects where the stimulus appears.

# Usage

	list, err := stimuli.Load(cfg.StimuliPath)
	sub, err := stimuli.FilterVersion(list, "cn")
	order := stimuli.Shuffle(sub)
	stimuli.FillLabels(order)

Shuffle copies; the caller's slice is untouched. A run stores the
shuffled order in its session, so the order is drawn exactly once.
*/
package stimuli
