package config

// 实体种类的配置键名
const (
	KindCar            = "car"
	KindTruck          = "truck"
	KindBicycle        = "bicycle"
	KindPedestrian     = "pedestrian"
	KindPedestrianFree = "pedestrian_free"
)

// 配置默认值
const (
	DefaultMinSpacing      = 0.04 // 同车道相邻实体最小进度间隔
	DefaultFootprintHalf   = 12.0 // 路口覆盖区半宽（米）
	DefaultWorldHalfExtent = 80.0 // 世界半边长（米）
	DefaultFlashTime       = 3.0  // 行人闪烁预警窗口（秒）
	DefaultCapacity        = 128  // 实体池容量
	DefaultSpeedJitter     = 0.2  // 出生速度乘性扰动比例（±20%）
)

// RuntimeConfig 运行时配置
// 功能：存储仿真运行时的配置信息，补全默认值后供各管理器使用
type RuntimeConfig struct {
	All Config   // 全部配置
	C   Control  // 全局控制配置
	S   Scenario // 场景配置（默认值已补全）
}

// defaultSpeeds 各类实体的默认标称速度
// 说明：车30km/h、卡车25km/h、自行车4m/s、行人1.34m/s
func defaultSpeeds() map[string]KindSpeed {
	return map[string]KindSpeed{
		KindCar:            {Nominal: 8.33, Jitter: DefaultSpeedJitter},
		KindTruck:          {Nominal: 6.94, Jitter: DefaultSpeedJitter},
		KindBicycle:        {Nominal: 4.0, Jitter: DefaultSpeedJitter},
		KindPedestrian:     {Nominal: 1.34, Jitter: DefaultSpeedJitter},
		KindPedestrianFree: {Nominal: 1.34, Jitter: DefaultSpeedJitter},
	}
}

// defaultMix 默认实体种类权重
func defaultMix() map[string]float64 {
	return map[string]float64{
		KindCar:            0.5,
		KindTruck:          0.1,
		KindBicycle:        0.15,
		KindPedestrian:     0.15,
		KindPedestrianFree: 0.1,
	}
}

// ApplyScenarioDefaults 对场景配置补全默认值
// 功能：将未设置的场景参数设置为文档化的默认值
// 参数：s-待补全的场景配置
// 说明：车道表与信控程序没有默认值，缺失由使用方校验并快速失败
func ApplyScenarioDefaults(s *Scenario) {
	if s.World.HalfExtent <= 0 {
		s.World.HalfExtent = DefaultWorldHalfExtent
	}
	if s.Footprint.HalfWidth <= 0 {
		s.Footprint.HalfWidth = DefaultFootprintHalf
	}
	if s.Engine.Capacity <= 0 {
		s.Engine.Capacity = DefaultCapacity
	}
	if s.Engine.Population <= 0 {
		s.Engine.Population = s.Engine.Capacity / 2
	}
	if s.Engine.MinSpacing <= 0 {
		s.Engine.MinSpacing = DefaultMinSpacing
	}
	if len(s.Engine.Mix) == 0 {
		s.Engine.Mix = defaultMix()
	}
	speeds := defaultSpeeds()
	for kind, speed := range s.Engine.Speeds {
		if speed.Jitter == 0 {
			speed.Jitter = DefaultSpeedJitter
		}
		speeds[kind] = speed
	}
	s.Engine.Speeds = speeds
	if s.Signal.FlashTime == 0 {
		s.Signal.FlashTime = DefaultFlashTime
	}
}

// NewRuntimeConfig 根据配置初始化运行时配置
// 功能：创建运行时配置对象，补全场景默认值
// 参数：config-原始配置对象，scenario-已解析的场景（内联或外部加载）
// 返回：初始化的运行时配置指针
func NewRuntimeConfig(config Config, scenario Scenario) *RuntimeConfig {
	rc := &RuntimeConfig{}

	rc.All = config
	rc.C = config.Control
	ApplyScenarioDefaults(&scenario)
	rc.S = scenario

	return rc
}
