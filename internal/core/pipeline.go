package core

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/shaman-narayanasamy/VirusHostInteractionPredictor/internal/blast"
	"github.com/shaman-narayanasamy/VirusHostInteractionPredictor/internal/genes"
	"github.com/shaman-narayanasamy/VirusHostInteractionPredictor/internal/genomes"
	"github.com/shaman-narayanasamy/VirusHostInteractionPredictor/internal/log"
	"github.com/shaman-narayanasamy/VirusHostInteractionPredictor/internal/seqio"
	"github.com/shaman-narayanasamy/VirusHostInteractionPredictor/pkg/models"
)

// PipelineOptions describe one feature computation: where the genomes and
// annotated genes live, which pairs to score, and how the work is bounded.
type PipelineOptions struct {
	VirusGenomeDir string
	HostGenomeDir  string

	// VirusGeneDir and HostGeneDir are optional; without them only
	// genome-level features are computed.
	VirusGeneDir string
	HostGeneDir  string

	// GenomeExt and GeneExt are filename extensions without the leading
	// dot. They default to "fasta" and "ffn".
	GenomeExt string
	GeneExt   string

	// PairsFile optionally restricts the run to the virus,host rows of a
	// CSV file instead of the full cartesian product.
	PairsFile string

	// BlastnFile and SpacerFile are optional BLAST tabular outputs
	// feeding the homology signal.
	BlastnFile string
	SpacerFile string

	// Workers bounds the parallel pair computations. Defaults to 6.
	Workers int

	// Thresholds bound the imprecision tolerated when aggregating codon
	// statistics. The zero value selects the defaults.
	Thresholds genes.Thresholds

	// SkippedGeneWarn is the skipped-gene fraction above which a QC
	// finding is raised for a gene file.
	SkippedGeneWarn float64

	// IncludeNonDegenerate keeps the codons with a single decoding (ATG,
	// TGG) in the codon accordance metrics.
	IncludeNonDegenerate bool
}

func (opts PipelineOptions) withDefaults() PipelineOptions {
	if opts.GenomeExt == "" {
		opts.GenomeExt = "fasta"
	}
	if opts.GeneExt == "" {
		opts.GeneExt = "ffn"
	}
	if opts.Workers < 1 {
		opts.Workers = 6
	}
	if opts.Thresholds == (genes.Thresholds{}) {
		opts.Thresholds = genes.DefaultThresholds()
	}
	return opts
}

// FeatureSet is the outcome of one feature computation.
type FeatureSet struct {
	// Pairs holds the computed features in pair order.
	Pairs []models.PairFeatures

	// Findings are the quality-control observations raised on the way.
	Findings []models.QCFinding

	// Viruses and Hosts list the genome files that were considered.
	Viruses []string
	Hosts   []string
}

// FeatureComputer defines the interface for enumerating virus-host pairs
// and computing their interaction features.
type FeatureComputer interface {
	DeterminePairs(opts PipelineOptions) ([]models.Pair, error)
	ComputeFeatures(ctx context.Context, opts PipelineOptions) (*FeatureSet, error)
}

// featurePipeline implements FeatureComputer over genome and gene files
// on disk.
type featurePipeline struct {
	events EventLogger
	logger zerolog.Logger
}

// NewFeatureComputer creates a FeatureComputer. events may be nil when no
// event trail is wanted.
func NewFeatureComputer(events EventLogger) FeatureComputer {
	return &featurePipeline{
		events: events,
		logger: log.WithComponent("pipeline"),
	}
}

// DeterminePairs lists the genome files on both sides and returns the
// pairs a computation over opts would score.
func (p *featurePipeline) DeterminePairs(opts PipelineOptions) ([]models.Pair, error) {
	opts = opts.withDefaults()

	virusFiles, err := listFiles(opts.VirusGenomeDir, opts.GenomeExt)
	if err != nil {
		return nil, err
	}
	hostFiles, err := listFiles(opts.HostGenomeDir, opts.GenomeExt)
	if err != nil {
		return nil, err
	}
	return p.determinePairs(virusFiles, hostFiles, opts, newQCCollector())
}

// ComputeFeatures runs the full pipeline: pair enumeration, header
// indexing, homology maps, genome and gene profiling, and the per-pair
// feature computation across a bounded worker pool.
func (p *featurePipeline) ComputeFeatures(ctx context.Context, opts PipelineOptions) (*FeatureSet, error) {
	opts = opts.withDefaults()
	qc := newQCCollector()

	virusFiles, err := listFiles(opts.VirusGenomeDir, opts.GenomeExt)
	if err != nil {
		return nil, err
	}
	if len(virusFiles) == 0 {
		return nil, fmt.Errorf("no .%s genome files in %s", opts.GenomeExt, opts.VirusGenomeDir)
	}
	hostFiles, err := listFiles(opts.HostGenomeDir, opts.GenomeExt)
	if err != nil {
		return nil, err
	}
	if len(hostFiles) == 0 {
		return nil, fmt.Errorf("no .%s genome files in %s", opts.GenomeExt, opts.HostGenomeDir)
	}

	pairs, err := p.determinePairs(virusFiles, hostFiles, opts, qc)
	if err != nil {
		return nil, err
	}
	if len(pairs) == 0 {
		return nil, fmt.Errorf("no virus-host pairs to compute")
	}
	p.emit("pairs.determined", map[string]any{
		"pairs":   len(pairs),
		"viruses": len(virusFiles),
		"hosts":   len(hostFiles),
	})

	headers, err := p.indexHeaders(opts, virusFiles, hostFiles)
	if err != nil {
		return nil, err
	}

	blastnHits, err := p.loadHits(opts.BlastnFile, "blastn", headers, qc)
	if err != nil {
		return nil, err
	}
	spacerHits, err := p.loadHits(opts.SpacerFile, "spacer", headers, qc)
	if err != nil {
		return nil, err
	}

	genomeProfiles, err := p.profileGenomes(opts, virusFiles, hostFiles)
	if err != nil {
		return nil, err
	}

	virusGenes, err := p.profileGenes(opts.VirusGeneDir, virusFiles, opts, qc)
	if err != nil {
		return nil, err
	}
	hostGenes, err := p.profileGenes(opts.HostGeneDir, hostFiles, opts, qc)
	if err != nil {
		return nil, err
	}

	results := make([]models.PairFeatures, len(pairs))
	pairFindings := make([][]models.QCFinding, len(pairs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i, pair := range pairs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			pf, findings, err := p.computePair(pair, genomeProfiles, virusGenes, hostGenes, blastnHits, spacerHits, opts)
			if err != nil {
				return fmt.Errorf("pair %s vs %s: %w", pair.Virus, pair.Host, err)
			}
			results[i] = pf
			pairFindings[i] = findings
			p.emit("pair.computed", map[string]any{
				"virus": pair.Virus,
				"host":  pair.Host,
			})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for _, findings := range pairFindings {
		qc.extend(findings)
	}

	p.logger.Info().
		Int("pairs", len(results)).
		Int("viruses", len(virusFiles)).
		Int("hosts", len(hostFiles)).
		Msg("features computed")

	return &FeatureSet{
		Pairs:    results,
		Findings: qc.Findings(),
		Viruses:  virusFiles,
		Hosts:    hostFiles,
	}, nil
}

func (p *featurePipeline) emit(eventType string, data map[string]any) {
	if p.events == nil {
		return
	}
	if err := p.events.LogEvent(eventType, data); err != nil {
		p.logger.Warn().Err(err).Str("event_type", eventType).Msg("failed to record event")
	}
}

// listFiles returns the names of the regular files in dir carrying the
// extension, in lexical order.
func listFiles(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}
	suffix := "." + ext
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), suffix) {
			continue
		}
		files = append(files, e.Name())
	}
	return files, nil
}

// geneFileFor maps a genome filename onto its annotated gene filename by
// swapping the extension.
func geneFileFor(genomeFile, genomeExt, geneExt string) string {
	return strings.TrimSuffix(genomeFile, "."+genomeExt) + "." + geneExt
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

// determinePairs builds the cartesian product of the two sides, or reads
// the rows of the pairs file when one was given.
func (p *featurePipeline) determinePairs(virusFiles, hostFiles []string, opts PipelineOptions, qc *qcCollector) ([]models.Pair, error) {
	if opts.PairsFile == "" {
		pairs := make([]models.Pair, 0, len(virusFiles)*len(hostFiles))
		for _, v := range virusFiles {
			for _, h := range hostFiles {
				pairs = append(pairs, models.Pair{Virus: v, Host: h})
			}
		}
		return pairs, nil
	}
	return p.readPairsFile(opts.PairsFile, virusFiles, hostFiles, qc)
}

// readPairsFile reads virus,host rows. Rows referencing files absent from
// either side are dropped with a warning, which also covers header rows.
func (p *featurePipeline) readPairsFile(path string, virusFiles, hostFiles []string, qc *qcCollector) ([]models.Pair, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening pairs file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 2
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading pairs file %s: %w", path, err)
	}

	viruses := toSet(virusFiles)
	hosts := toSet(hostFiles)

	var pairs []models.Pair
	for _, rec := range records {
		virus, host := rec[0], rec[1]
		if !viruses[virus] || !hosts[host] {
			qc.add(models.QCWarning, models.QCCodeUnknownPair,
				virus+","+host,
				"pairs file row references files not present in the genome directories")
			continue
		}
		pairs = append(pairs, models.Pair{Virus: virus, Host: host})
	}
	return pairs, nil
}

// indexHeaders maps every record ID in every genome file to the file it
// belongs to.
func (p *featurePipeline) indexHeaders(opts PipelineOptions, virusFiles, hostFiles []string) (map[string]string, error) {
	index := make(map[string]string)
	add := func(dir string, files []string) error {
		for _, file := range files {
			ids, err := seqio.ReadHeaders(filepath.Join(dir, file))
			if err != nil {
				return fmt.Errorf("indexing headers of %s: %w", file, err)
			}
			for _, id := range ids {
				index[id] = file
			}
		}
		return nil
	}
	if err := add(opts.VirusGenomeDir, virusFiles); err != nil {
		return nil, err
	}
	if err := add(opts.HostGenomeDir, hostFiles); err != nil {
		return nil, err
	}
	return index, nil
}

// loadHits reads a BLAST tabular file into a hit map. An empty path means
// the signal is unavailable and yields a nil map.
func (p *featurePipeline) loadHits(path, kind string, headers map[string]string, qc *qcCollector) (map[string][]string, error) {
	if path == "" {
		return nil, nil
	}
	alignments, err := blast.ReadAlignments(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s output: %w", kind, err)
	}
	hits, unknown := blast.HitMap(alignments, headers)
	for _, contig := range unknown {
		qc.add(models.QCWarning, models.QCCodeUnknownContig, contig,
			fmt.Sprintf("%s output references a contig absent from the genome directories", kind))
	}
	if len(hits) == 0 {
		qc.add(models.QCWarning, models.QCCodeNoHomology, path,
			fmt.Sprintf("%s output yields no usable alignments", kind))
	}
	return hits, nil
}

// genomeProfile bundles the genome-level signals of one genome file.
type genomeProfile struct {
	gc float64
	k3 *genomes.Profile
	k6 *genomes.Profile
}

func (p *featurePipeline) profileGenomes(opts PipelineOptions, virusFiles, hostFiles []string) (map[string]*genomeProfile, error) {
	profiles := make(map[string]*genomeProfile, len(virusFiles)+len(hostFiles))
	add := func(dir string, files []string) error {
		for _, file := range files {
			if _, ok := profiles[file]; ok {
				continue
			}
			seq, err := seqio.ReadGenome(filepath.Join(dir, file))
			if err != nil {
				return fmt.Errorf("reading genome %s: %w", file, err)
			}
			k3, err := genomes.NewProfile(seq, 3)
			if err != nil {
				return fmt.Errorf("profiling %s: %w", file, err)
			}
			k6, err := genomes.NewProfile(seq, 6)
			if err != nil {
				return fmt.Errorf("profiling %s: %w", file, err)
			}
			profiles[file] = &genomeProfile{gc: genomes.GC(seq), k3: k3, k6: k6}
		}
		return nil
	}
	if err := add(opts.VirusGenomeDir, virusFiles); err != nil {
		return nil, err
	}
	if err := add(opts.HostGenomeDir, hostFiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

// geneProfile bundles the gene-level signals of one annotated gene file.
type geneProfile struct {
	set   *genes.GeneSet
	usage *genes.CodonUsage
}

// profileGenes loads every gene file in geneDir, keyed by gene filename.
// Gene files that cannot be aggregated are skipped with a finding, as are
// genomes whose expected gene file is absent. An empty geneDir disables
// gene-level metrics without findings.
func (p *featurePipeline) profileGenes(geneDir string, genomeFiles []string, opts PipelineOptions, qc *qcCollector) (map[string]*geneProfile, error) {
	if geneDir == "" {
		p.logger.Info().Msg("no gene directory given; gene-level metrics disabled")
		return nil, nil
	}

	geneFiles, err := listFiles(geneDir, opts.GeneExt)
	if err != nil {
		return nil, err
	}
	listed := toSet(geneFiles)

	profiles := make(map[string]*geneProfile, len(geneFiles))
	for _, geneFile := range geneFiles {
		set, err := genes.LoadGeneSet(filepath.Join(geneDir, geneFile))
		if err != nil {
			qc.add(models.QCWarning, models.QCCodeUnusableGenes, geneFile,
				fmt.Sprintf("cannot load gene file: %v", err))
			continue
		}

		total := len(set.Genes) + len(set.SkippedGenes)
		if total > 0 {
			if frac := float64(len(set.SkippedGenes)) / float64(total); frac > opts.SkippedGeneWarn {
				qc.add(models.QCWarning, models.QCCodeSkippedGenes, geneFile,
					fmt.Sprintf("%.1f%% of genes could not be framed into codons", frac*100))
			}
		}

		usage, err := set.CodonUsage(opts.Thresholds)
		if err != nil {
			qc.add(models.QCWarning, models.QCCodeUnusableGenes, geneFile,
				fmt.Sprintf("cannot aggregate codon usage: %v", err))
			continue
		}
		if set.TRNACounts().Total == 0 {
			qc.add(models.QCWarning, models.QCCodeNoTRNA, geneFile,
				"no tRNA genes found; accordance metrics will be unavailable")
		}
		profiles[geneFile] = &geneProfile{set: set, usage: usage}
	}

	for _, genomeFile := range genomeFiles {
		if geneFile := geneFileFor(genomeFile, opts.GenomeExt, opts.GeneExt); !listed[geneFile] {
			qc.add(models.QCWarning, models.QCCodeMissingGeneFile, genomeFile,
				fmt.Sprintf("no gene file %s in %s; gene-level metrics unavailable", geneFile, geneDir))
		}
	}
	return profiles, nil
}

// computePair derives all features of one virus-host pair from the
// precomputed profiles.
func (p *featurePipeline) computePair(
	pair models.Pair,
	genomeProfiles map[string]*genomeProfile,
	virusGenes, hostGenes map[string]*geneProfile,
	blastnHits, spacerHits map[string][]string,
	opts PipelineOptions,
) (models.PairFeatures, []models.QCFinding, error) {
	vg, hg := genomeProfiles[pair.Virus], genomeProfiles[pair.Host]

	k3, err := genomes.D2Star(vg.k3, hg.k3)
	if err != nil {
		return models.PairFeatures{}, nil, fmt.Errorf("k3 distance: %w", err)
	}
	k6, err := genomes.D2Star(vg.k6, hg.k6)
	if err != nil {
		return models.PairFeatures{}, nil, fmt.Errorf("k6 distance: %w", err)
	}

	pf := models.PairFeatures{
		Pair:         pair,
		GCDifference: vg.gc - hg.gc,
		K3Dist:       k3,
		K6Dist:       k6,
		HomologyHit:  blast.HasHit(blastnHits, pair.Virus, pair.Host) || blast.HasHit(spacerHits, pair.Virus, pair.Host),
	}

	vgene := virusGenes[geneFileFor(pair.Virus, opts.GenomeExt, opts.GeneExt)]
	hgene := hostGenes[geneFileFor(pair.Host, opts.GenomeExt, opts.GeneExt)]
	if vgene == nil || hgene == nil {
		return pf, nil, nil
	}

	subject := pair.Virus + " vs " + pair.Host
	gl, findings := geneLevelMetrics(vgene, hgene, opts, subject)
	pf.GeneLevel = gl
	return pf, findings, nil
}

// geneLevelMetrics compares the codon bias of a virus and a candidate host
// and scores the tRNA accordance. Metrics that cannot be computed are
// reported as findings and left out of the map.
func geneLevelMetrics(vgene, hgene *geneProfile, opts PipelineOptions, subject string) (models.GeneLevelFeatures, []models.QCFinding) {
	gl := models.GeneLevelFeatures{}
	var findings []models.QCFinding

	fail := func(metric string, err error) {
		findings = append(findings, models.QCFinding{
			Severity: models.QCWarning,
			Code:     models.QCCodeMetricFailed,
			Subject:  subject,
			Message:  fmt.Sprintf("%s: %v", metric, err),
		})
	}
	record := func(key string, value float64, err error) {
		if err != nil {
			fail(key, err)
			return
		}
		gl[key] = value
	}

	compare := func(prefix string, host, virus []float64) {
		cmp, err := genes.NewComparison(host, virus)
		if err != nil {
			fail(prefix, err)
			return
		}
		slope, _, err := cmp.LinearRegression()
		record(prefix+"_slope", slope, err)
		r2, err := cmp.RSquared()
		record(prefix+"_R2", r2, err)
		cos, err := cmp.CosineSimilarity()
		record(prefix+"_cos", cos, err)
	}

	compare("codons",
		genes.FreqVector(hgene.usage.Frequency, genes.CodonList),
		genes.FreqVector(vgene.usage.Frequency, genes.CodonList))
	compare("aa",
		genes.FreqVector(hgene.usage.AminoFrequency, genes.AminoAcidList),
		genes.FreqVector(vgene.usage.AminoFrequency, genes.AminoAcidList))
	compare("RSCU",
		genes.FreqVector(hgene.usage.RSCU, genes.CodonList),
		genes.FreqVector(vgene.usage.RSCU, genes.CodonList))

	metrics, err := genes.NewTRNAMetrics(vgene.set, hgene.set, opts.Thresholds)
	if err != nil {
		fail("trna", err)
		return gl, findings
	}
	skipNonDegenerate := !opts.IncludeNonDegenerate

	taai, err := metrics.TAAI()
	record("TAAI_host", taai, err)
	vtaai, err := metrics.VirocellTAAI()
	record("TAAI_virocell", vtaai, err)
	tcai, err := metrics.TCAI(skipNonDegenerate)
	record("TCAI_host", tcai, err)
	vtcai, err := metrics.VirocellTCAI(skipNonDegenerate)
	record("TCAI_virocell", vtcai, err)

	return gl, findings
}
