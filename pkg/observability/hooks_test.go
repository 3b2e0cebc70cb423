package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	p := NoopPipelineHooks{}
	p.OnLoadStart(ctx, "q1", []string{"q1_offence_category.json"})
	p.OnLoadComplete(ctx, "q1", time.Second, nil)
	p.OnComputeStart(ctx, "q1", "category")
	p.OnComputeComplete(ctx, "q1", 12, time.Second, nil)
	p.OnRenderStart(ctx, "q1", []string{"svg"})
	p.OnRenderComplete(ctx, "q1", []string{"svg"}, time.Second, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "model")
	c.OnCacheMiss(ctx, "dataset")
	c.OnCacheSet(ctx, "artifact", 1024)

	d := NoopDatasetHooks{}
	d.OnFetchStart(ctx, "file", "q5_property_crime_trends.json")
	d.OnFetchComplete(ctx, "file", "q5_property_crime_trends.json", 2048, time.Second, nil)
	d.OnInvalidate(ctx, "q5_property_crime_trends.json")
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := Dataset().(NoopDatasetHooks); !ok {
		t.Error("Dataset() should return NoopDatasetHooks by default")
	}

	customPipeline := &testPipelineHooks{}
	SetPipelineHooks(customPipeline)
	if Pipeline() != customPipeline {
		t.Error("SetPipelineHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customDataset := &testDatasetHooks{}
	SetDatasetHooks(customDataset)
	if Dataset() != customDataset {
		t.Error("SetDatasetHooks should set custom hooks")
	}

	Reset()
	if _, ok := Dataset().(NoopDatasetHooks); !ok {
		t.Error("Reset() should restore NoopDatasetHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testPipelineHooks{}
	SetPipelineHooks(custom)
	SetPipelineHooks(nil)

	if Pipeline() != custom {
		t.Error("SetPipelineHooks(nil) should be ignored")
	}
}

type testPipelineHooks struct{ NoopPipelineHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testDatasetHooks struct{ NoopDatasetHooks }
