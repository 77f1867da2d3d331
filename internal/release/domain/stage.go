package domain

// Stage is a state of the release pipeline. Stages are reached strictly in
// declaration order; optional stages may be skipped.
type Stage int

const (
	StageStart Stage = iota
	StageTagsFetched
	StageVersionResolved
	StageImageBuilt
	StageChartUpdated
	StageManifestRendered
	StagePackaged
	StageIndexed
	StageDocsDeployed
	StageCommitted
	StageTagged
	StagePushed
	StageTagsPushed
	StageImagePushed
	StageReleased
	StageDone
	StageFailed
)

var stageNames = [...]string{
	StageStart:            "Start",
	StageTagsFetched:      "TagsFetched",
	StageVersionResolved:  "VersionResolved",
	StageImageBuilt:       "ImageBuilt",
	StageChartUpdated:     "ChartUpdated",
	StageManifestRendered: "ManifestRendered",
	StagePackaged:         "Packaged",
	StageIndexed:          "Indexed",
	StageDocsDeployed:     "DocsDeployed",
	StageCommitted:        "Committed",
	StageTagged:           "Tagged",
	StagePushed:           "Pushed",
	StageTagsPushed:       "TagsPushed",
	StageImagePushed:      "ImagePushed",
	StageReleased:         "Released",
	StageDone:             "Done",
	StageFailed:           "Failed",
}

var stageActions = [...]string{
	StageStart:            "starting",
	StageTagsFetched:      "fetching tags",
	StageVersionResolved:  "resolving version",
	StageImageBuilt:       "building image",
	StageChartUpdated:     "updating chart",
	StageManifestRendered: "rendering manifest",
	StagePackaged:         "packaging chart",
	StageIndexed:          "indexing chart repository",
	StageDocsDeployed:     "deploying docs",
	StageCommitted:        "committing",
	StageTagged:           "tagging",
	StagePushed:           "pushing commits",
	StageTagsPushed:       "pushing tags",
	StageImagePushed:      "pushing image",
	StageReleased:         "creating release",
	StageDone:             "finishing",
	StageFailed:           "failing",
}

// String returns the string representation of the Stage.
func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "Unknown"
	}
	return stageNames[s]
}

// Action describes the work performed to reach s, for error messages.
func (s Stage) Action() string {
	if s < 0 || int(s) >= len(stageActions) {
		return "unknown step"
	}
	return stageActions[s]
}

// Terminal reports whether no further transition is possible from s.
func (s Stage) Terminal() bool {
	return s == StageDone || s == StageFailed
}
