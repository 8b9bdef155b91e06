package core

import (
	"context"
	"math"
	"reflect"
	"testing"
)

func TestZZDiagSerialParallel(t *testing.T) {
	serial := testdataOptions()
	serial.Workers = 1
	parallel := testdataOptions()
	parallel.Workers = 8

	a, err := NewFeatureComputer(nil).ComputeFeatures(context.Background(), serial)
	if err != nil {
		t.Fatalf("serial: %v", err)
	}
	b, err := NewFeatureComputer(nil).ComputeFeatures(context.Background(), parallel)
	if err != nil {
		t.Fatalf("parallel: %v", err)
	}
	if len(a.Pairs) != len(b.Pairs) {
		t.Fatalf("len: %d vs %d", len(a.Pairs), len(b.Pairs))
	}
	for i := range a.Pairs {
		pa, pb := a.Pairs[i], b.Pairs[i]
		if pa.Pair != pb.Pair {
			t.Errorf("i=%d pair identity differs: %+v vs %+v", i, pa.Pair, pb.Pair)
			continue
		}
		if pa.GCDifference != pb.GCDifference || pa.K3Dist != pb.K3Dist || pa.K6Dist != pb.K6Dist || pa.HomologyHit != pb.HomologyHit {
			t.Errorf("%s vs %s: scalar diff: a={gc:%v k3:%v k6:%v hom:%v} b={gc:%v k3:%v k6:%v hom:%v}",
				pa.Virus, pa.Host, pa.GCDifference, pa.K3Dist, pa.K6Dist, pa.HomologyHit,
				pb.GCDifference, pb.K3Dist, pb.K6Dist, pb.HomologyHit)
		}
		if (pa.GeneLevel == nil) != (pb.GeneLevel == nil) {
			t.Errorf("%s vs %s: GeneLevel nil-ness differs: %v vs %v", pa.Virus, pa.Host, pa.GeneLevel == nil, pb.GeneLevel == nil)
			continue
		}
		if pa.GeneLevel == nil {
			continue
		}
		for k, va := range pa.GeneLevel {
			vb, ok := pb.GeneLevel[k]
			if !ok {
				t.Errorf("%s vs %s: key %q only in serial (val %v)", pa.Virus, pa.Host, k, va)
				continue
			}
			if va != vb {
				t.Errorf("%s vs %s: key %q differs: serial=%v parallel=%v (NaN? a=%v b=%v)",
					pa.Virus, pa.Host, k, va, vb, math.IsNaN(va), math.IsNaN(vb))
			} else if math.IsNaN(va) {
				t.Logf("%s vs %s: key %q is NaN in BOTH runs (DeepEqual false on NaN)", pa.Virus, pa.Host, k)
			}
		}
		for k := range pb.GeneLevel {
			if _, ok := pa.GeneLevel[k]; !ok {
				t.Errorf("%s vs %s: key %q only in parallel (val %v)", pa.Virus, pa.Host, k, pb.GeneLevel[k])
			}
		}
		if !reflect.DeepEqual(pa, pb) && !t.Failed() {
			t.Logf("%s vs %s: DeepEqual false but no field diff found above", pa.Virus, pa.Host)
		}
	}
}
