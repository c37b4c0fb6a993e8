package rate

// DefaultVolumetricDivisor is the industry-standard cm^3 per kg divisor used
// when a courier does not specify its own.
const DefaultVolumetricDivisor = 5000

const defaultDimensionCM = 10

// Dimensions are package dimensions in centimetres.
type Dimensions struct {
	Length float64
	Width  float64
	Height float64
}

// VolumetricWeight computes the volumetric weight in kg for the given
// dimensions. Missing (zero or negative) dimensions default to 10 cm.
// The raw value is returned; slab rounding is the engine's job.
func VolumetricWeight(dims Dimensions, divisor float64) float64 {
	if divisor <= 0 {
		divisor = DefaultVolumetricDivisor
	}
	l := orDefault(dims.Length)
	w := orDefault(dims.Width)
	h := orDefault(dims.Height)
	return l * w * h / divisor
}

// ChargeableWeight returns the billing weight for a package: the greater of
// the actual and volumetric weight.
func ChargeableWeight(actualWeightKg float64, dims Dimensions, divisor float64) float64 {
	volumetric := VolumetricWeight(dims, divisor)
	if actualWeightKg > volumetric {
		return actualWeightKg
	}
	return volumetric
}

func orDefault(dim float64) float64 {
	if dim <= 0 {
		return defaultDimensionCM
	}
	return dim
}
