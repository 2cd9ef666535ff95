package config

// XYZ 三维坐标配置项
type XYZ struct {
	X float64 `yaml:"x" bson:"x"`
	Y float64 `yaml:"y" bson:"y"`
	Z float64 `yaml:"z,omitempty" bson:"z,omitempty"`
}

// InputPath 指定场景数据来源的配置（MongoDB、文件系统）
// 功能：定义场景输入路径的配置结构，支持多种数据源
// 说明：支持MongoDB数据库和文件系统两种数据源，支持缓存机制
type InputPath struct {
	DB        string `yaml:"db"`                   // 数据库名
	Col       string `yaml:"col"`                  // 集合名
	Cache     string `yaml:"cache,omitempty"`      // 缓存文件名，为空则采用默认路径{db}.{col}.yml
	OnlyCache bool   `yaml:"only_cache,omitempty"` // 只从缓存中获取
	File      string `yaml:"file,omitempty"`       // 文件路径（优先级高于MongoDB）
}

// GetCachePath 获取缓存文件路径
// 功能：返回缓存文件的完整路径
// 说明：如果指定了缓存路径则直接返回，否则使用默认命名规则{数据库名}.{集合名}.yml
func (p InputPath) GetCachePath() string {
	if p.Cache != "" {
		return p.Cache
	}
	return p.DB + "." + p.Col + ".yml"
}

// Input 指定模拟器场景输入数据的配置项
type Input struct {
	URI      string    `yaml:"uri"`      // MongoDB连接字符串
	Scenario InputPath `yaml:"scenario"` // 场景（车道表、信控程序、引擎参数）
}

// ControlStep 指定模拟器模拟时间范围和间隔的配置项
// 功能：定义仿真时间控制参数
type ControlStep struct {
	Start    int32   `yaml:"start"`    // 开始步数
	Total    int32   `yaml:"total"`    // 总步数
	Interval float64 `yaml:"interval"` // 每步的时间间隔（秒）
}

// Control 模拟器控制配置
type Control struct {
	Step ControlStep `yaml:"step"`
	Seed uint64      `yaml:"seed,omitempty"` // 全局随机种子
}

// LaneDef 车道定义
// 功能：描述一条直线段车道的几何与属性
// 说明：start/end为世界坐标，车道长度由两点距离决定，与路口尺寸相互独立
type LaneDef struct {
	Name  string `yaml:"name" bson:"name"`                     // 车道名称
	Axis  string `yaml:"axis" bson:"axis"`                     // 所属通行轴（ns/ew）
	Type  string `yaml:"type" bson:"type"`                     // 车道类型（driving/walking）
	Turn  string `yaml:"turn,omitempty" bson:"turn,omitempty"` // 转向类型（through/left，默认through）
	Start XYZ    `yaml:"start" bson:"start"`                   // 起点世界坐标
	End   XYZ    `yaml:"end" bson:"end"`                       // 终点世界坐标
}

// Footprint 路口覆盖区配置
// 功能：以中心点和半宽描述世界坐标下的方形路口覆盖区
// 说明：非绿灯轴的实体不得从外部进入该区域（停车线语义）
type Footprint struct {
	Center    XYZ     `yaml:"center" bson:"center"`         // 路口中心
	HalfWidth float64 `yaml:"half_width" bson:"half_width"` // 覆盖区半宽（米）
}

// World 世界范围配置
type World struct {
	HalfExtent float64 `yaml:"half_extent" bson:"half_extent"` // 以路口中心为原点的半边长（米）
}

// PhaseDef 信控相位定义（自定义程序用）
// 功能：描述一个命名相位的时长与各信号灯头的颜色
// 说明：颜色取值green/yellow/red/off，off仅对保护左转箭头灯头有意义
type PhaseDef struct {
	Name      string  `yaml:"name" bson:"name"`
	Duration  float64 `yaml:"duration" bson:"duration"` // 相位时长（秒）
	NSThrough string  `yaml:"ns_through" bson:"ns_through"`
	NSLeft    string  `yaml:"ns_left,omitempty" bson:"ns_left,omitempty"`
	EWThrough string  `yaml:"ew_through" bson:"ew_through"`
	EWLeft    string  `yaml:"ew_left,omitempty" bson:"ew_left,omitempty"`
}

// Signal 信控程序配置
// 功能：选择内置两相位/保护左转程序或给出自定义相位序列
type Signal struct {
	Program   string     `yaml:"program" bson:"program"`                         // two_phase/protected_left/custom
	Green     float64    `yaml:"green,omitempty" bson:"green,omitempty"`         // 直行绿灯时长（秒）
	Yellow    float64    `yaml:"yellow,omitempty" bson:"yellow,omitempty"`       // 黄灯时长（秒）
	LeftGreen float64    `yaml:"left_green,omitempty" bson:"left_green,omitempty"` // 保护左转绿灯时长（秒）
	AllRed    float64    `yaml:"all_red,omitempty" bson:"all_red,omitempty"`     // 全红清空时长（秒）
	FlashTime float64    `yaml:"flash_time,omitempty" bson:"flash_time,omitempty"` // 行人闪烁预警窗口（秒，0禁用）
	Phases    []PhaseDef `yaml:"phases,omitempty" bson:"phases,omitempty"`       // 自定义相位序列
}

// KindSpeed 某类实体的标称速度配置
type KindSpeed struct {
	Nominal float64 `yaml:"nominal" bson:"nominal"`                   // 标称速度（米/秒）
	Jitter  float64 `yaml:"jitter,omitempty" bson:"jitter,omitempty"` // 出生速度乘性扰动比例
}

// Engine 实体池与运动学配置
type Engine struct {
	Capacity   int                  `yaml:"capacity" bson:"capacity"`       // 实体池容量（构造后固定）
	Population int                  `yaml:"population" bson:"population"`   // 目标在场实体数
	MinSpacing float64              `yaml:"min_spacing" bson:"min_spacing"` // 同车道相邻实体最小进度间隔
	Mix        map[string]float64   `yaml:"mix,omitempty" bson:"mix,omitempty"`       // 实体种类权重
	Speeds     map[string]KindSpeed `yaml:"speeds,omitempty" bson:"speeds,omitempty"` // 种类->速度配置
}

// Scenario 场景配置
// 功能：构成一个可模拟路口的全部静态参数
type Scenario struct {
	World     World     `yaml:"world" bson:"world"`
	Footprint Footprint `yaml:"footprint" bson:"footprint"`
	Lanes     []LaneDef `yaml:"lanes" bson:"lanes"`
	Signal    Signal    `yaml:"signal" bson:"signal"`
	Engine    Engine    `yaml:"engine" bson:"engine"`
}

// Config YAML配置文件的根结构
// 功能：定义整个仿真系统的配置结构
// 说明：场景可以内联在配置中，也可以通过input从文件/MongoDB加载
type Config struct {
	Input    *Input   `yaml:"input,omitempty"` // 场景外部输入（可选）
	Control  Control  `yaml:"control"`         // 模拟过程控制
	Scenario Scenario `yaml:"scenario"`        // 内联场景
}
