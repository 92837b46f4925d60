// Package model 定义报告生成工作流的输入输出模型
package model

// ProjectType 建筑类型
type ProjectType string

const (
	ProjectTypeOffice      ProjectType = "office"
	ProjectTypeLaboratory  ProjectType = "laboratory"
	ProjectTypeHospital    ProjectType = "hospital"
	ProjectTypeSchool      ProjectType = "school"
	ProjectTypeResidential ProjectType = "residential"
)

// ValidProjectType 检查建筑类型枚举值
func ValidProjectType(t ProjectType) bool {
	switch t {
	case ProjectTypeOffice, ProjectTypeLaboratory, ProjectTypeHospital,
		ProjectTypeSchool, ProjectTypeResidential:
		return true
	default:
		return false
	}
}

// GermanLabel 建筑类型的德语名称（用于提示词）
func (t ProjectType) GermanLabel() string {
	switch t {
	case ProjectTypeOffice:
		return "Bürogebäude"
	case ProjectTypeLaboratory:
		return "Laborgebäude"
	case ProjectTypeHospital:
		return "Krankenhaus"
	case ProjectTypeSchool:
		return "Schulgebäude"
	case ProjectTypeResidential:
		return "Wohngebäude"
	default:
		return string(t)
	}
}

// TableRow 上传表格的一行，列名 -> 单元格文本
type TableRow map[string]string

// RoomSummary 从房间簿表格推导的汇总信息
type RoomSummary struct {
	TotalRooms  int
	TotalAreaM2 float64
	// RoomTypes 房间类型 -> 数量
	RoomTypes map[string]int
	// HeatingWPerM2 / CoolingWPerM2 负荷回归端点给出的估算值，0 表示未知
	HeatingWPerM2 float64
	CoolingWPerM2 float64
}

// ProjectContext 单次请求的项目上下文
// 构建后不可变，仅被当前请求持有
type ProjectContext struct {
	ProjectName  string
	Location     string
	ProjectType  ProjectType
	FederalState string

	// RoomTable / CostTable 可选的上传表格，nil 表示未上传
	RoomTable []TableRow
	CostTable []TableRow

	// RoomSummary 仅当 RoomTable 存在时非 nil
	RoomSummary *RoomSummary
}

// HasRoomTable 是否带房间簿
func (c *ProjectContext) HasRoomTable() bool {
	return c != nil && len(c.RoomTable) > 0
}

// HasCostTable 是否带成本表
func (c *ProjectContext) HasCostTable() bool {
	return c != nil && len(c.CostTable) > 0
}
