package order

// VolumetricDivisor converts cubic centimeters into volumetric kilograms.
const VolumetricDivisor = 5000.0

// VolumetricWeight returns l*b*h/5000, in the same unit as dead weight.
func VolumetricWeight(length, breadth, height float64) float64 {
	return (length * breadth * height) / VolumetricDivisor
}
