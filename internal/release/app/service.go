package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	noopmetric "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/nathantilsley/chart-publish/internal/platform/execx"
	"github.com/nathantilsley/chart-publish/internal/release/domain"
	"github.com/nathantilsley/chart-publish/internal/release/ports"
)

const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
)

// Ports groups the driven ports a PublishService orchestrates.
type Ports struct {
	Registry ports.RegistryPort
	Operator ports.OperatorPort // nil when no terminal is attached
	Chart    ports.ChartPort
	Renderer ports.RendererPort
	Packager ports.PackagerPort
	VCS      ports.VersionControlPort
	Diff     ports.DiffPort

	// Optional, only needed when the matching Request toggle is set.
	Images   ports.ImagePort
	Docs     ports.DocsPort
	Releases ports.ReleasePort
}

// PublishService implements ports.PublishUseCase and ports.TagListingUseCase
// by driving the release pipeline one stage at a time.
type PublishService struct {
	ports    Ports
	layout   domain.Layout
	pageSize int
	tracer   trace.Tracer
	steps    metric.Int64Counter
	duration metric.Float64Histogram
	logger   *slog.Logger
}

// NewPublishService creates a PublishService. tracer, meter and logger may be
// nil, in which case noop telemetry and a stderr logger are used.
func NewPublishService(
	p Ports,
	layout domain.Layout,
	pageSize int,
	tracer trace.Tracer,
	meter metric.Meter,
	logger *slog.Logger,
) *PublishService {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	if tracer == nil {
		tracer = nooptrace.NewTracerProvider().Tracer("release")
	}
	if meter == nil {
		meter = noopmetric.NewMeterProvider().Meter("release")
	}

	var steps metric.Int64Counter = noopmetric.Int64Counter{}
	if c, err := meter.Int64Counter("release.steps",
		metric.WithDescription("Release pipeline steps by stage and outcome")); err == nil {
		steps = c
	} else {
		logger.Warn("creating release.steps counter", "error", err)
	}

	var duration metric.Float64Histogram = noopmetric.Float64Histogram{}
	if h, err := meter.Float64Histogram("release.step.duration",
		metric.WithDescription("Duration of release pipeline steps"),
		metric.WithUnit("s")); err == nil {
		duration = h
	} else {
		logger.Warn("creating release.step.duration histogram", "error", err)
	}

	return &PublishService{
		ports:    p,
		layout:   layout,
		pageSize: pageSize,
		tracer:   tracer,
		steps:    steps,
		duration: duration,
		logger:   logger,
	}
}

// ListRecentTags returns the names of the most recently updated registry tags,
// oldest of them first.
func (s *PublishService) ListRecentTags(ctx context.Context) ([]string, error) {
	tags, err := s.ports.Registry.ListTags(ctx, s.pageSize)
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	return domain.LatestTags(tags, domain.DisplayedTagCount), nil
}

// Execute runs one release. On failure the returned report ends in
// StageFailed and the error is a *domain.StepError.
func (s *PublishService) Execute(ctx context.Context, req domain.Request) (*domain.Report, error) {
	report := domain.NewReport()
	s.logger.Info("release started", "mode", req.Mode.String(), "dryRun", req.DryRun)

	// ci mode resolves its version before anything touches the outside world.
	if req.Mode == domain.ModeCI {
		if err := s.step(ctx, report, domain.StageVersionResolved, func(context.Context) error {
			v, err := domain.VersionFromRef(req.RefName, req.RefType)
			report.Version = v
			return err
		}); err != nil {
			return report, err
		}
	}

	if err := s.checkPorts(req); err != nil {
		return report, s.abort(report, domain.KindPrecondition, err)
	}

	if req.Mode == domain.ModeInteractive {
		if err := s.resolveInteractive(ctx, report, req); err != nil {
			return report, err
		}
	}

	if req.BuildImage {
		ref, err := domain.ImageRef(s.layout.ImageRepository, report.Version)
		if err != nil {
			return report, s.abort(report, domain.KindPrecondition, &domain.PreconditionError{Err: err})
		}
		report.ImageRef = ref
	}

	if req.DryRun {
		if err := s.preview(ctx, report, req); err != nil {
			return report, err
		}
	} else if err := s.publish(ctx, report, req); err != nil {
		return report, err
	}

	if err := report.Advance(domain.StageDone); err != nil {
		return report, err
	}
	s.logger.Info("release finished", "version", report.Version.String(), "stages", len(report.Stages))
	return report, nil
}

func (s *PublishService) checkPorts(req domain.Request) error {
	var errs []error
	if req.Mode == domain.ModeInteractive && req.Version == "" && s.ports.Operator == nil {
		errs = append(errs, errors.New("no version given and no terminal to ask for one"))
	}
	if req.Mode == domain.ModeInteractive && s.ports.Registry == nil {
		errs = append(errs, errors.New("no registry configured"))
	}
	// A dry run only previews, so the mutating adapters may be absent.
	mutating := !req.DryRun
	if mutating && req.BuildImage && s.ports.Images == nil {
		errs = append(errs, errors.New("image build requested but docker is not available"))
	}
	if mutating && req.DeployDocs && s.ports.Docs == nil {
		errs = append(errs, errors.New("docs deploy requested but mkdocs is not available"))
	}
	if mutating && req.CreateRelease && s.ports.Releases == nil {
		errs = append(errs, errors.New("release creation requested but no GitHub client is configured"))
	}
	if err := errors.Join(errs...); err != nil {
		return &domain.PreconditionError{Err: err}
	}
	return nil
}

func (s *PublishService) resolveInteractive(ctx context.Context, report *domain.Report, req domain.Request) error {
	if err := s.step(ctx, report, domain.StageTagsFetched, func(ctx context.Context) error {
		tags, err := s.ListRecentTags(ctx)
		if err != nil {
			return err
		}
		report.Tags = tags
		if s.ports.Operator == nil {
			return nil
		}
		return s.ports.Operator.ShowTags(ctx, tags)
	}); err != nil {
		return err
	}

	return s.step(ctx, report, domain.StageVersionResolved, func(ctx context.Context) error {
		raw := req.Version
		if raw == "" {
			answer, err := s.ports.Operator.AskVersion(ctx)
			if err != nil {
				return &domain.PreconditionError{Err: fmt.Errorf("reading version: %w", err)}
			}
			raw = answer
		}
		v, err := domain.ParseVersion(raw)
		report.Version = v
		return err
	})
}

// preview fills the report with the chart diff and the planned commands
// without mutating anything.
func (s *PublishService) preview(ctx context.Context, report *domain.Report, req domain.Request) error {
	change, err := s.ports.Chart.PreviewVersion(ctx, s.layout.ChartFile(), report.Version)
	if err != nil {
		return s.abort(report, classify(err), fmt.Errorf("previewing chart: %w", err))
	}
	report.Preview = s.ports.Diff.ComputeDiff("a/"+change.Path, "b/"+change.Path, change.Before, change.After)
	report.Plan = s.plan(req, report)
	s.logger.Info("dry run complete, nothing was changed", "version", report.Version.String(), "planned", len(report.Plan))
	return nil
}

func (s *PublishService) publish(ctx context.Context, report *domain.Report, req domain.Request) error {
	v := report.Version
	l := s.layout

	type stageFn struct {
		stage domain.Stage
		run   func(context.Context) error
		when  bool
	}
	pipeline := []stageFn{
		{domain.StageImageBuilt, func(ctx context.Context) error {
			return s.ports.Images.Build(ctx, report.ImageRef, l.ImageContext)
		}, req.BuildImage},
		{domain.StageChartUpdated, func(ctx context.Context) error {
			change, err := s.ports.Chart.UpdateVersion(ctx, l.ChartFile(), v)
			if err == nil {
				s.logger.Info("chart updated", "chart", change.Name, "version", v.String())
			}
			return err
		}, true},
		{domain.StageManifestRendered, func(ctx context.Context) error {
			return s.ports.Renderer.RenderManifest(ctx, l.ChartDir, l.ReleaseName, l.ManifestPath)
		}, true},
		{domain.StagePackaged, func(ctx context.Context) error {
			archive, err := s.ports.Packager.Package(ctx, l.ChartDir, l.PackageDir)
			report.ArchivePath = archive
			return err
		}, true},
		{domain.StageIndexed, func(ctx context.Context) error {
			return s.ports.Packager.Index(ctx, l.IndexDir, l.ChartRepoURL)
		}, true},
		{domain.StageDocsDeployed, func(ctx context.Context) error {
			return s.ports.Docs.Deploy(ctx)
		}, req.DeployDocs},
		{domain.StageCommitted, func(ctx context.Context) error {
			return s.commit(ctx, report, req.Mode)
		}, true},
		{domain.StageTagged, func(ctx context.Context) error {
			return s.ports.VCS.Tag(ctx, v.String(), v.String())
		}, req.Mode == domain.ModeInteractive},
		{domain.StagePushed, func(ctx context.Context) error {
			return s.ports.VCS.Push(ctx)
		}, true},
		{domain.StageTagsPushed, func(ctx context.Context) error {
			return s.ports.VCS.PushTags(ctx)
		}, req.Mode == domain.ModeInteractive},
		{domain.StageImagePushed, func(ctx context.Context) error {
			return s.ports.Images.Push(ctx, report.ImageRef)
		}, req.BuildImage},
		{domain.StageReleased, func(ctx context.Context) error {
			url, err := s.ports.Releases.CreateRelease(ctx, v)
			report.ReleaseURL = url
			return err
		}, req.CreateRelease},
	}

	for _, p := range pipeline {
		if !p.when {
			continue
		}
		if err := s.step(ctx, report, p.stage, p.run); err != nil {
			return err
		}
	}
	return nil
}

func (s *PublishService) commit(ctx context.Context, report *domain.Report, mode domain.Mode) error {
	if err := s.ports.VCS.Stage(ctx, s.layout.StagedPaths()...); err != nil {
		return err
	}
	staged, err := s.ports.VCS.HasStagedChanges(ctx)
	if err != nil {
		return err
	}
	if !staged {
		report.CommitSkipped = true
		s.logger.Warn("nothing to commit, release files are unchanged", "version", report.Version.String())
		return nil
	}
	return s.ports.VCS.Commit(ctx, domain.CommitMessage(mode, report.Version))
}

// plan lists the commands publish would run for req, in order.
func (s *PublishService) plan(req domain.Request, report *domain.Report) []string {
	l := s.layout
	v := report.Version.String()

	var out []string
	if req.BuildImage {
		out = append(out, fmt.Sprintf("docker build -t %s %s", report.ImageRef, l.ImageContext))
	}
	out = append(out,
		fmt.Sprintf("update %s: version=%s appVersion=%s", l.ChartFile(), v, v),
		fmt.Sprintf("helm template --name-template %s %s > %s", l.ReleaseName, l.ChartDir, l.ManifestPath),
		fmt.Sprintf("helm package %s --destination %s", l.ChartDir, l.PackageDir),
		fmt.Sprintf("helm repo index %s --url %s", l.IndexDir, l.ChartRepoURL),
	)
	if req.DeployDocs {
		out = append(out, "mkdocs gh-deploy")
	}
	out = append(out,
		"git add -- "+joinPaths(l.StagedPaths()),
		fmt.Sprintf("git commit -m %q", domain.CommitMessage(req.Mode, report.Version)),
	)
	if req.Mode == domain.ModeInteractive {
		out = append(out, fmt.Sprintf("git tag -a %s -m %s", v, v))
	}
	out = append(out, "git push")
	if req.Mode == domain.ModeInteractive {
		out = append(out, "git push --tags")
	}
	if req.BuildImage {
		out = append(out, "docker push "+report.ImageRef)
	}
	if req.CreateRelease {
		out = append(out, "create GitHub release "+v)
	}
	return out
}

func joinPaths(paths []string) string {
	slashed := make([]string, len(paths))
	for i, p := range paths {
		slashed[i] = filepath.ToSlash(p)
	}
	return strings.Join(slashed, " ")
}

// step runs fn as stage: it is traced, timed and counted, and on success the
// report advances to stage. A failure moves the report to StageFailed.
func (s *PublishService) step(
	ctx context.Context,
	report *domain.Report,
	stage domain.Stage,
	fn func(context.Context) error,
) error {
	ctx, span := s.tracer.Start(ctx, "release."+stage.String(),
		trace.WithAttributes(attribute.String("release.stage", stage.String())))
	defer span.End()

	from := report.Current()
	s.logger.Debug("step started", "stage", stage.String())
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)

	outcome := outcomeSuccess
	if err != nil {
		outcome = outcomeFailure
	}
	attrs := metric.WithAttributes(
		attribute.String("stage", stage.String()),
		attribute.String("outcome", outcome),
	)
	s.steps.Add(ctx, 1, attrs)
	s.duration.Record(ctx, elapsed.Seconds(), attrs)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		report.Fail()
		return &domain.StepError{From: from, Step: stage, Kind: classify(err), Err: err}
	}

	if err := report.Advance(stage); err != nil {
		return err
	}
	s.logger.Info("step completed", "stage", stage.String(), "duration", elapsed.Round(time.Millisecond))
	return nil
}

// abort fails the report for an error raised outside a pipeline stage.
func (s *PublishService) abort(report *domain.Report, kind domain.FailureKind, err error) error {
	from := report.Current()
	report.Fail()
	return &domain.StepError{From: from, Step: from, Kind: kind, Err: err}
}

func classify(err error) domain.FailureKind {
	var (
		te *execx.ToolError
		tr *domain.TransportError
	)
	switch {
	case domain.IsPrecondition(err):
		return domain.KindPrecondition
	case errors.As(err, &tr):
		return domain.KindTransport
	case errors.As(err, &te):
		return domain.KindTool
	default:
		return domain.KindUnknown
	}
}
