package planner

import (
	"testing"

	"github.com/paixian/paixian/pkg/model"
)

func visitAt(id string, lat, lon, durationMin float64) *model.Visit {
	return &model.Visit{
		PointID:     id,
		PointName:   "门店" + id,
		Location:    model.Location{Latitude: lat, Longitude: lon},
		DurationMin: durationMin,
	}
}

func TestClusterByTime_Threshold(t *testing.T) {
	// 2小时工时、0.8填充率 => 每簇服务时长上限96分钟
	// 3个60分钟的点两两互斥，应各自成簇
	visits := []*model.Visit{
		visitAt("A", 31.20, 121.40, 60),
		visitAt("B", 31.21, 121.41, 60),
		visitAt("C", 31.22, 121.42, 60),
	}

	clusters := ClusterByTime(visits, 2, DefaultClusterFillRatio)

	if len(clusters) != 3 {
		t.Fatalf("聚类数 = %d, 期望 3", len(clusters))
	}
	for _, c := range clusters {
		var total float64
		for _, v := range c {
			total += v.DurationMin
		}
		if total > 2*60*DefaultClusterFillRatio {
			t.Errorf("单簇服务时长 %.0f 超过阈值 %.0f", total, 2*60*DefaultClusterFillRatio)
		}
	}
}

func TestClusterByTime_FitsInOneCluster(t *testing.T) {
	// 8小时工时阈值384分钟，3个60分钟的点应合为一簇
	visits := []*model.Visit{
		visitAt("A", 31.20, 121.40, 60),
		visitAt("B", 31.21, 121.41, 60),
		visitAt("C", 31.22, 121.42, 60),
	}

	clusters := ClusterByTime(visits, 8, DefaultClusterFillRatio)

	if len(clusters) != 1 {
		t.Fatalf("聚类数 = %d, 期望 1", len(clusters))
	}
	if len(clusters[0]) != 3 {
		t.Errorf("簇内点数 = %d, 期望 3", len(clusters[0]))
	}
}

func TestClusterByTime_OversizedVisit(t *testing.T) {
	// 单点时长超过阈值也要独立成簇，不能被丢弃
	visits := []*model.Visit{
		visitAt("A", 31.20, 121.40, 30),
		visitAt("B", 31.21, 121.41, 600),
		visitAt("C", 31.22, 121.42, 30),
	}

	clusters := ClusterByTime(visits, 2, DefaultClusterFillRatio)

	total := 0
	found := false
	for _, c := range clusters {
		total += len(c)
		for _, v := range c {
			if v.PointID == "B" {
				found = true
				if len(c) != 1 {
					t.Errorf("超长点位应独立成簇，实际簇大小 %d", len(c))
				}
			}
		}
	}
	if total != 3 {
		t.Errorf("聚类不应丢弃任务: 总数 %d, 期望 3", total)
	}
	if !found {
		t.Error("超长点位从聚类结果中消失")
	}
}

func TestClusterByTime_Conservation(t *testing.T) {
	visits := []*model.Visit{
		visitAt("A", 31.10, 121.30, 45),
		visitAt("B", 31.40, 121.60, 45),
		visitAt("C", 31.12, 121.32, 45),
		visitAt("D", 31.38, 121.58, 45),
		visitAt("E", 31.25, 121.45, 45),
	}

	clusters := ClusterByTime(visits, 2, DefaultClusterFillRatio)

	seen := make(map[string]int)
	for _, c := range clusters {
		for _, v := range c {
			seen[v.PointID]++
		}
	}
	if len(seen) != 5 {
		t.Errorf("聚类后点位数 = %d, 期望 5", len(seen))
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("点位 %s 出现 %d 次，应恰好1次", id, n)
		}
	}
}

func TestClusterByTime_Empty(t *testing.T) {
	if clusters := ClusterByTime(nil, 8, DefaultClusterFillRatio); clusters != nil {
		t.Errorf("空输入应返回nil，实际 %v", clusters)
	}
}

func TestCentroid(t *testing.T) {
	visits := []*model.Visit{
		visitAt("A", 30, 120, 30),
		visitAt("B", 32, 122, 30),
	}

	c := centroid(visits)
	if c.Latitude != 31 || c.Longitude != 121 {
		t.Errorf("质心 = (%v, %v), 期望 (31, 121)", c.Latitude, c.Longitude)
	}
}
