package config

type AppConfig struct {
	Server ServerConfig
	Log    LogConfig
	Sim    SimConfig
}

func LoadApp() (AppConfig, error) {
	logCfg, err := LoadLog()
	if err != nil {
		return AppConfig{}, err
	}
	serverCfg, err := LoadServer()
	if err != nil {
		return AppConfig{}, err
	}
	simCfg, err := LoadSim()
	if err != nil {
		return AppConfig{}, err
	}
	return AppConfig{
		Server: serverCfg,
		Log:    logCfg,
		Sim:    simCfg,
	}, nil
}
