package config

// -----------------------------------------------------------------------------
// Embedded configuration
//
// Key: device ID (same value placed in ctx under CtxDeviceKey)
// Val: raw JSON bytes for that device
// -----------------------------------------------------------------------------

const cfgPicoAudio = `{
  "hal": {
    "devices": [
      {
        "id": "codec0",
        "type": "ac101",
        "params": {
          "bus": "i2c0",
          "addr": 26,
          "domain": "audio",
          "name": "main",
          "sample_rate_hz": 44100,
          "bits": 16,
          "volume": 0.6
        }
      }
    ],
    "pollers": [
      {"domain": "audio", "kind": "codec", "name": "main", "verb": "read", "interval_ms": 5000, "jitter_ms": 250}
    ]
  }
}`

var embeddedConfigs = map[string][]byte{
	"pico-audio": []byte(cfgPicoAudio),
}
