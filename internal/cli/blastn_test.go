package cli

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/shaman-narayanasamy/VirusHostInteractionPredictor/internal/integration"
)

func TestBlastnCmd_MissingFlags(t *testing.T) {
	origQuery := blastnQuery
	origDB := blastnDB
	defer func() {
		blastnQuery = origQuery
		blastnDB = origDB
	}()
	blastnQuery = ""
	blastnDB = ""

	err := blastnCmd.RunE(blastnCmd, []string{})
	if err == nil {
		t.Fatal("expected error for missing flags")
	}
	if !strings.Contains(err.Error(), "--query, --db") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestBlastnCmd_VersionCheckFailure(t *testing.T) {
	origQuery := blastnQuery
	origDB := blastnDB
	origCheck := blastnCheckVersion
	defer func() {
		blastnQuery = origQuery
		blastnDB = origDB
		blastnCheckVersion = origCheck
	}()

	blastnQuery = "viruses.fasta"
	blastnDB = "hosts.fasta"
	blastnCheckVersion = func() error {
		return fmt.Errorf("blastn version 2.6.0 is older than the required 2.10.0")
	}

	err := blastnCmd.RunE(blastnCmd, []string{})
	if err == nil {
		t.Fatal("expected error from version check")
	}
	if !strings.Contains(err.Error(), "older than the required") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestBlastnCmd_Success(t *testing.T) {
	origQuery := blastnQuery
	origDB := blastnDB
	origOut := blastnOut
	origEvalue := blastnEvalue
	origThreads := blastnThreads
	origCheck := blastnCheckVersion
	origSearch := blastnSearch
	defer func() {
		blastnQuery = origQuery
		blastnDB = origDB
		blastnOut = origOut
		blastnEvalue = origEvalue
		blastnThreads = origThreads
		blastnCheckVersion = origCheck
		blastnSearch = origSearch
	}()

	blastnQuery = "viruses.fasta"
	blastnDB = "hosts.fasta"
	blastnOut = "hits.tsv"
	blastnEvalue = "1e-5"
	blastnThreads = 4

	blastnCheckVersion = func() error { return nil }

	var gotCfg integration.BlastConfig
	blastnSearch = func(ctx context.Context, cfg integration.BlastConfig) (*integration.BlastResult, error) {
		gotCfg = cfg
		return &integration.BlastResult{
			DBPath:     "blastdb/hosts",
			OutputPath: cfg.OutputPath,
			Hits:       17,
		}, nil
	}

	err := blastnCmd.RunE(blastnCmd, []string{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotCfg.QueryFasta != "viruses.fasta" || gotCfg.DBFasta != "hosts.fasta" {
		t.Errorf("unexpected config: %+v", gotCfg)
	}
	if gotCfg.OutputPath != "hits.tsv" {
		t.Errorf("expected output path hits.tsv, got %q", gotCfg.OutputPath)
	}

	wantExtra := []string{"-evalue", "1e-5", "-num_threads", "4"}
	if len(gotCfg.ExtraArgs) != len(wantExtra) {
		t.Fatalf("expected extra args %v, got %v", wantExtra, gotCfg.ExtraArgs)
	}
	for i, arg := range wantExtra {
		if gotCfg.ExtraArgs[i] != arg {
			t.Errorf("extra arg %d = %q, want %q", i, gotCfg.ExtraArgs[i], arg)
		}
	}
}

func TestBlastnCmd_SearchError(t *testing.T) {
	origQuery := blastnQuery
	origDB := blastnDB
	origCheck := blastnCheckVersion
	origSearch := blastnSearch
	defer func() {
		blastnQuery = origQuery
		blastnDB = origDB
		blastnCheckVersion = origCheck
		blastnSearch = origSearch
	}()

	blastnQuery = "viruses.fasta"
	blastnDB = "hosts.fasta"
	blastnCheckVersion = func() error { return nil }
	blastnSearch = func(ctx context.Context, cfg integration.BlastConfig) (*integration.BlastResult, error) {
		return nil, fmt.Errorf("makeblastdb exited with status 2")
	}

	err := blastnCmd.RunE(blastnCmd, []string{})
	if err == nil {
		t.Fatal("expected error from search")
	}
	if !strings.Contains(err.Error(), "running homology search") {
		t.Errorf("unexpected error: %v", err)
	}
}
