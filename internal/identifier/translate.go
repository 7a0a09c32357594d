package identifier

import (
	"sort"
	"strings"
)

// Translator maps provider vocabulary to stable identifier roots.
//
// The dictionary is immutable after construction; construct once at startup
// and share the value freely across goroutines. Tests can substitute a small
// dictionary without global state.
type Translator struct {
	dict map[string]string
	// keys in deterministic substring-scan order: longest first, then
	// lexicographic. Longest-first prefers the most specific term when
	// several keys occur in one header.
	keys []string
}

// NewTranslator builds a Translator over a copy of dict.
func NewTranslator(dict map[string]string) *Translator {
	t := &Translator{
		dict: make(map[string]string, len(dict)),
		keys: make([]string, 0, len(dict)),
	}
	for k, v := range dict {
		t.dict[k] = v
		t.keys = append(t.keys, k)
	}
	sort.Slice(t.keys, func(i, j int) bool {
		if len(t.keys[i]) != len(t.keys[j]) {
			return len(t.keys[i]) > len(t.keys[j])
		}
		return t.keys[i] < t.keys[j]
	})
	return t
}

// Translate returns an identifier root for header.
//
// Lookup order:
//  1. exact match on the trimmed header
//  2. first dictionary key contained in the header (longest key first)
//  3. fallback: punctuation replaced by underscores, text otherwise kept
//     verbatim for Sanitize to deal with
//
// Unknown headers degrade to less legible identifiers; they never block
// ingestion.
func (t *Translator) Translate(header string) string {
	clean := strings.TrimSpace(header)
	if v, ok := t.dict[clean]; ok {
		return v
	}
	for _, k := range t.keys {
		if strings.Contains(clean, k) {
			return t.dict[k]
		}
	}
	return punctToUnderscore(clean)
}

// TranslateSanitized is the common composition: translate, then sanitize.
func (t *Translator) TranslateSanitized(header string) string {
	return Sanitize(t.Translate(header))
}

func punctToUnderscore(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '(', ')', '（', '）', '[', ']', '【', '】', ' ', '　', '、', '，', ',', '：', ':', '%', '％':
			return '_'
		}
		return r
	}, s)
}

// DefaultDictionary is the curated domain dictionary for the power-market
// exports this system ingests. It is deliberately non-exhaustive: anything
// missing falls through to sanitized original text.
func DefaultDictionary() map[string]string {
	return map[string]string{
		"电厂名称":        "power_plant_name",
		"机组名称":        "generator_name",
		"最小技术出力":      "min_technical_output",
		"最小技术出力(MW)":  "min_technical_output",
		"额定出力":        "rated_output",
		"额定出力(MW)":    "rated_output",
		"日期":          "maintenance_date",
		"时间":          "record_time",
		"类型":          "type",
		"备注":          "remarks",
		"序号":          "seq_no",
		"元件名称":        "component_name",
		"设备名称":        "device_name",
		"电压等级":        "voltage_level",
		"电压等级(Kv)":    "voltage_level",
		"停电范围":        "outage_scope",
		"停电时间":        "outage_time",
		"送电时间":        "restore_time",
		"工作内容":        "work_content",
		"检修性质":        "maintenance_type",
		"申请单位":        "applicant",
		"机组检修预测信息":    "unit_maintenance_prediction",
		"机组技术参数":      "unit_technical_parameters",
		"检修计划":        "maintenance_plan",
		"输变电检修预测信息":   "transmission_maintenance",
		"温度":          "temperature",
		"天气":          "weather",
		"风向":          "wind_direction",
		"风速":          "wind_speed",
		"降雨概率":        "precipitation_probability",
		"体感温度":        "apparent_temperature",
		"湿度":          "humidity",
		"紫外线":         "uv_index",
		"云量":          "cloud_cover",
		"降雨量":         "rainfall",
		"星期":          "week_day",
		"天":           "day",
		"统调预测":        "dispatch_forecast",
		"A类电源预测":      "class_a_power_forecast",
		"B类电源预测":      "class_b_power_forecast",
		"地方电源预测":      "local_power_forecast",
		"西电东送电源预测":    "west_to_east_power_forecast",
		"粤港澳预测":       "guangdong_hongkong_macau_forecast",
		"发电总预测":       "total_generation_forecast",
		"现货新能源D日预测":   "spot_new_energy_day_ahead_forecast",
		"统调新能源光伏预测":   "dispatch_new_energy_pv_forecast",
		"统调新能源风电预测":   "dispatch_new_energy_wind_forecast",
		"水电（含抽蓄）预测":   "hydro_power_forecast_incl_pumped",
		"抽蓄出力预测":      "pumped_storage_output_forecast",
		"实际统调负荷":      "actual_dispatch_load",
		"A类电源实际":      "actual_class_a_power",
		"B类电源实际":      "actual_class_b_power",
		"地方电源实际":      "actual_local_power",
		"西电东送实际":      "actual_west_to_east_power",
		"粤港联络实际":      "actual_guangdong_hongkong_link",
		"新能源总实际":      "actual_total_new_energy",
		"水电含抽蓄实际":     "actual_hydro_power_incl_pumped",
		"统调负荷偏差":      "dispatch_load_deviation",
	}
}
