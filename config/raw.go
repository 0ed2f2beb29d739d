package config

// These helpers read a decoded TOML map[string]interface{} tolerating
// either camelCase or snake_case keys per spec §6 ("snake_case or
// camelCase both accepted"). Each is looked up only at the specific
// schema paths Config.applyRaw names — arbitrary user-supplied keys
// (MCP server names, shellEnvironment.setVars, hook env vars) are never
// touched, so this never mangles data that happens to look snake_cased.

func lookup(m map[string]interface{}, names ...string) (interface{}, bool) {
	for _, n := range names {
		if v, ok := m[n]; ok {
			return v, true
		}
	}
	return nil, false
}

func getString(m map[string]interface{}, names ...string) (string, bool) {
	v, ok := lookup(m, names...)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func getBool(m map[string]interface{}, names ...string) (bool, bool) {
	v, ok := lookup(m, names...)
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

func getInt(m map[string]interface{}, names ...string) (int, bool) {
	v, ok := lookup(m, names...)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int64:
		return int(n), true
	case int:
		return n, true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

func getFloat(m map[string]interface{}, names ...string) (float64, bool) {
	v, ok := lookup(m, names...)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

func getTable(m map[string]interface{}, names ...string) (map[string]interface{}, bool) {
	v, ok := lookup(m, names...)
	if !ok {
		return nil, false
	}
	t, ok := v.(map[string]interface{})
	return t, ok
}

func getTableList(m map[string]interface{}, names ...string) ([]map[string]interface{}, bool) {
	v, ok := lookup(m, names...)
	if !ok {
		return nil, false
	}
	switch items := v.(type) {
	case []map[string]interface{}:
		return items, true
	case []interface{}:
		out := make([]map[string]interface{}, 0, len(items))
		for _, it := range items {
			if t, ok := it.(map[string]interface{}); ok {
				out = append(out, t)
			}
		}
		return out, true
	default:
		return nil, false
	}
}

func getStringSlice(m map[string]interface{}, names ...string) ([]string, bool) {
	v, ok := lookup(m, names...)
	if !ok {
		return nil, false
	}
	items, ok := v.([]interface{})
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	return out, true
}

func getStringMap(m map[string]interface{}, names ...string) (map[string]string, bool) {
	v, ok := lookup(m, names...)
	if !ok {
		return nil, false
	}
	t, ok := v.(map[string]interface{})
	if !ok {
		return nil, false
	}
	out := make(map[string]string, len(t))
	for k, val := range t {
		if s, ok := val.(string); ok {
			out[k] = s
		}
	}
	return out, true
}
