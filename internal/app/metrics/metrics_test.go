package metrics

import "testing"

func TestRecordToolUsageLabels(t *testing.T) {
	RecordToolUsage("42", true)

	families, err := Registry.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	for _, mf := range families {
		if mf.GetName() != "toolshub_catalog_tool_usages_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, label := range m.GetLabel() {
				if label.GetName() == "tool_id" && label.GetValue() == "42" {
					return
				}
			}
		}
		t.Fatalf("tool_id label not found on %v", mf)
	}
	t.Fatal("tool usage metric not gathered")
}
