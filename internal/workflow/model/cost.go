package model

// CostSchemaID 成本分组结构化内容的 schema 标识
const CostSchemaID = "din276_kg400_v1"

// CostGroupCodes KG 400 成本分组编码，固定顺序
var CostGroupCodes = []string{
	"kg_410", "kg_420", "kg_430", "kg_434", "kg_440", "kg_470", "kg_480",
}

// CostGroupTitles 分组编码 -> 德语名称
var CostGroupTitles = map[string]string{
	"kg_410": "KG 410 Abwasser-, Wasser-, Gasanlagen",
	"kg_420": "KG 420 Wärmeversorgungsanlagen",
	"kg_430": "KG 430 Raumlufttechnische Anlagen",
	"kg_434": "KG 434 Kältetechnische Anlagen",
	"kg_440": "KG 440 Elektrische Anlagen",
	"kg_470": "KG 470 Nutzungsspezifische Anlagen",
	"kg_480": "KG 480 Gebäudeautomation",
}

// CostGroup 单个成本分组
type CostGroup struct {
	// Amount 金额（欧元，netto）
	Amount float64 `json:"betrag"`
	// AmountPerArea 单位面积金额（€/m²）
	AmountPerArea float64 `json:"pro_m2"`
	Description   string  `json:"beschreibung,omitempty"`
}

// CostTotal 汇总行
type CostTotal struct {
	Amount        float64 `json:"betrag"`
	AmountPerArea float64 `json:"pro_m2"`
}

// CostBreakdown DIN 276 KG 400 成本分解
// 不变式：Total.Amount 与分组金额之和的偏差在容差内；
// 超出容差只追加备注，不悄悄修正
type CostBreakdown struct {
	KG410 *CostGroup `json:"kg_410"`
	KG420 *CostGroup `json:"kg_420"`
	KG430 *CostGroup `json:"kg_430"`
	KG434 *CostGroup `json:"kg_434"`
	KG440 *CostGroup `json:"kg_440"`
	KG470 *CostGroup `json:"kg_470"`
	KG480 *CostGroup `json:"kg_480"`

	Total        CostTotal `json:"gesamt_kg_400"`
	AccuracyNote string    `json:"genauigkeit"`
	Remarks      []string  `json:"hinweise"`
}

// GroupByCode 按编码取分组指针，未知编码返回 nil
func (b *CostBreakdown) GroupByCode(code string) *CostGroup {
	if b == nil {
		return nil
	}
	switch code {
	case "kg_410":
		return b.KG410
	case "kg_420":
		return b.KG420
	case "kg_430":
		return b.KG430
	case "kg_434":
		return b.KG434
	case "kg_440":
		return b.KG440
	case "kg_470":
		return b.KG470
	case "kg_480":
		return b.KG480
	default:
		return nil
	}
}

// SumGroups 分组金额之和
func (b *CostBreakdown) SumGroups() float64 {
	var sum float64
	for _, code := range CostGroupCodes {
		if g := b.GroupByCode(code); g != nil {
			sum += g.Amount
		}
	}
	return sum
}
