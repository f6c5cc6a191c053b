// Package ingest 负责点位目录的导入
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/paixian/paixian/pkg/errors"
	"github.com/paixian/paixian/pkg/logger"
	"github.com/paixian/paixian/pkg/model"
)

// 列名到字段的映射，表头不区分大小写
var columnAliases = map[string]string{
	"id":           "id",
	"code":         "id",
	"编码":           "id",
	"name":         "name",
	"名称":           "name",
	"address":      "address",
	"地址":           "address",
	"latitude":     "latitude",
	"lat":          "latitude",
	"纬度":           "latitude",
	"longitude":    "longitude",
	"lon":          "longitude",
	"lng":          "longitude",
	"经度":           "longitude",
	"duration":     "duration",
	"duration_min": "duration",
	"时长":           "duration",
	"frequency":    "frequency",
	"freq":         "frequency",
	"频次":           "frequency",
}

// LoadFile 从CSV文件加载点位目录
func LoadFile(path string) ([]*model.Point, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.ImportFailed(fmt.Sprintf("打开文件失败: %v", err))
	}
	defer f.Close()

	return Load(f)
}

// Load 从CSV流加载点位目录
// 首行为表头；缺失或非法的数值按0处理，缺失的ID和名称按行号兜底
func Load(r io.Reader) ([]*model.Point, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.ImportFailed("文件为空")
	}
	if err != nil {
		return nil, errors.ImportFailed(fmt.Sprintf("读取表头失败: %v", err))
	}

	columns := make(map[string]int)
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if field, ok := columnAliases[key]; ok {
			columns[field] = i
		}
	}
	if _, ok := columns["latitude"]; !ok {
		return nil, errors.ImportFailed("表头缺少纬度列")
	}
	if _, ok := columns["longitude"]; !ok {
		return nil, errors.ImportFailed("表头缺少经度列")
	}

	var points []*model.Point
	rowNo := 0
	skipped := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// 列数不齐的行跳过不中断
			skipped++
			continue
		}

		point := &model.Point{
			ID:      cell(record, columns, "id"),
			Name:    cell(record, columns, "name"),
			Address: cell(record, columns, "address"),
			Location: model.Location{
				Latitude:  cellFloat(record, columns, "latitude"),
				Longitude: cellFloat(record, columns, "longitude"),
			},
			DurationMin: cellFloat(record, columns, "duration"),
			Frequency:   cellInt(record, columns, "frequency"),
		}
		point.Normalize(rowNo)
		points = append(points, point)
		rowNo++
	}

	if skipped > 0 {
		logger.Warn().Int("skipped", skipped).Msg("导入时跳过格式错误的行")
	}
	logger.Info().Int("points", len(points)).Msg("点位目录导入完成")

	return points, nil
}

// cell 读取字符串单元格
func cell(record []string, columns map[string]int, field string) string {
	idx, ok := columns[field]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

// cellFloat 读取浮点单元格，非法值按0处理
func cellFloat(record []string, columns map[string]int, field string) float64 {
	v, err := strconv.ParseFloat(cell(record, columns, field), 64)
	if err != nil {
		return 0
	}
	return v
}

// cellInt 读取整数单元格，非法值按0处理
func cellInt(record []string, columns map[string]int, field string) int {
	v, err := strconv.Atoi(cell(record, columns, field))
	if err != nil {
		return 0
	}
	return v
}
