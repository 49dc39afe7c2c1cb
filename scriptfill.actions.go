package scriptfill

// DefaultTemplate is the active template when nothing else has been configured.
const DefaultTemplate = `主体：一位充满活力的抖音带货达人，镜头全程聚焦，确保【{产品}】是绝对视觉中心。
主体描述：动作连贯有节奏，突出产品核心卖点。面料自然下垂，严禁任何扭曲或拉伸变形，保证结构真实。
动作序列：【{动作}】
镜头语言：动态运镜强化动作细节 —— 推近特写、跟随移动、环绕拍摄。每帧画面变化率 >35%，确保视觉冲击力。
氛围：{氛围}，适合短视频平台快速种草。`

var defaultProductTypes = []string{"裤子", "上衣", "连衣裙", "外套"}

var defaultActions = map[string][]string{
	"裤子": {
		"抬腿拉伸 → 插手裤兜 → 转身体展示大腿剪裁",
		"整理裤腰 → 拉大腿侧布料 → 插手裤袋站立展示",
		"拉裤子大腿部布料 → 踮脚展示裤脚收口 → 自然站立",
		"一只手插口袋 → 一只手拍小腿 → 微笑展示腿部线条",
		"弯腰调整裤脚 → 起身抚摸裤腿 → 转身展示背面",
		"抬腿展示裤子伸展性 → 调整裤脚 → 插口袋定格",
		"侧身站立 → 手指勾起裤腰展示弹性 → 微笑面对镜头",
		"前后踱步 → 展示裤腿垂坠感 → 停下插手展示整体效果",
		"单脚站立 → 展示另一侧裤腿 → 换脚重复动作",
		"坐姿展示 → 起身 → 转身360度展示整体效果",
	},
	"上衣": {
		"整理衣领 → 抚摸面料质感 → 展示侧面轮廓",
		"拉伸袖口 → 展示手臂活动性 → 自然垂放",
		"整理下摆 → 拍打面料展示弹性 → 微笑面对镜头",
		"转身展示背面设计 → 回头微笑 → 整理领口",
		"抬起手臂 → 展示腋下剪裁 → 放下自然站立",
		"双手抓住下摆两侧 → 拉开展示宽度 → 松手恢复自然状态",
		"手指勾起领口 → 展示领部细节 → 放手整理",
		"轻拉衣角 → 展示下摆设计 → 自然垂放",
		"单手叉腰 → 另一手展示袖口细节 → 换手重复",
		"前后转身 → 展示360度效果 → 定格微笑",
	},
	"连衣裙": {
		"转圈展示裙摆 → 停下抚摸面料 → 微笑面对镜头",
		"侧身展示剪裁 → 转身正面 → 手轻抚裙摆",
		"提裙角行礼 → 站直展示整体 → 侧身突出腰部设计",
		"自然站立 → 轻提裙摆展示内衬 → 放下整理",
		"双手拉起裙摆两侧 → 展示廓形 → 放下转身",
		"手指轻点肩带 → 展示细节 → 顺着裙摆下滑至脚踝",
		"侧身展示 → 双手向后拢发 → 突出背部设计",
		"轻跳展示裙摆活力 → 站定整理裙褶 → 微笑",
		"单手叉腰 → 另一手展示袖口或领部设计 → 换姿势展示侧面",
		"自然行走 → 停下转身 → 360度展示整体效果",
	},
	"外套": {
		"穿上外套 → 扣上扣子 → 展示正面效果",
		"打开外套 → 展示内衬和里料 → 扣上展示正面",
		"穿上外套 → 展示袖口细节 → 捏起肩部展示剪裁",
		"侧身站立 → 展示侧面轮廓 → 转身展示背面设计",
		"双手插兜 → 展示整体廓形 → 抬手展示活动性",
		"打开外套 → 随风展示飘逸感 → 扣上展示挺括感",
		"单手系扣 → 展示细节 → 完成后整理领子",
		"穿上外套 → 屈肘展示肩部剪裁 → 放下手自然站立",
		"展示口袋设计 → 插手入袋 → 取出展示口袋容量",
		"前后转身 → 展示360度效果 → 拉起衣领展示细节",
	},
}

var defaultAtmospheres = []string{
	"高能量、高转化力、电影级质感",
	"时尚感、年轻活力、专业质感",
	"轻松自然、生活化、亲和力强",
	"高级感、轻奢调性、精致细节",
	"动感活力、年轻潮流、街拍风格",
	"优雅知性、简约高级、质感突出",
	"休闲舒适、生活场景、真实自然",
	"专业展示、细节放大、品质凸显",
}

// ActionLibrary maps product types to action sequences used by the {动作} marker.
type ActionLibrary struct {
	productTypes []string
	actions      map[string][]string
	atmospheres  []string
}

// DefaultActionLibrary returns the built-in product types, actions and atmospheres.
func DefaultActionLibrary() *ActionLibrary {
	return NewActionLibrary(defaultProductTypes, defaultActions)
}

// NewActionLibrary builds an action library; product types without actions are dropped.
// Atmospheres are always the built-in list.
func NewActionLibrary(productTypes []string, actions map[string][]string) *ActionLibrary {
	lib := &ActionLibrary{
		actions:     make(map[string][]string, len(actions)),
		atmospheres: copyStringSlice(defaultAtmospheres),
	}
	for _, pt := range productTypes {
		list := cleanValues(actions[pt])
		if len(list) == 0 {
			continue
		}
		if _, dup := lib.actions[pt]; dup {
			continue
		}
		lib.productTypes = append(lib.productTypes, pt)
		lib.actions[pt] = list
	}
	return lib
}

// ProductTypes returns known product types in order, falling back to the built-in list
func (a *ActionLibrary) ProductTypes() []string {
	if a == nil || len(a.productTypes) == 0 {
		return copyStringSlice(defaultProductTypes)
	}
	return copyStringSlice(a.productTypes)
}

// Actions returns the action sequences for a product type.
// Unknown product types fall back to the built-in actions for that type, if any.
func (a *ActionLibrary) Actions(productType string) []string {
	if a != nil {
		if list := a.actions[productType]; len(list) > 0 {
			return list
		}
	}
	return defaultActions[productType]
}

// Atmospheres returns the atmosphere descriptions used by the {氛围} marker
func (a *ActionLibrary) Atmospheres() []string {
	if a == nil || len(a.atmospheres) == 0 {
		return defaultAtmospheres
	}
	return a.atmospheres
}
