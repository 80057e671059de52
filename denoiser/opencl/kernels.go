package opencl

// Guided blend filter executed by the accelerator. Each pixel is replaced
// by a weighted average of its neighborhood where the weights fall off with
// albedo and normal differences, then mixed with the unfiltered input using
// the blend factor (blend=0 yields the fully filtered output).
const denoiseKernelSource = `
#define FILTER_RADIUS 2

__kernel void denoise_blend(
	__global float4 *result,
	__global float4 *albedo,
	__global float4 *normal,
	__global float4 *output,
	const uint frameW,
	const uint frameH,
	const float blend
) {
	uint x = get_global_id(0);
	uint y = get_global_id(1);
	if (x >= frameW || y >= frameH) {
		return;
	}

	uint index = y * frameW + x;
	float4 centerAlbedo = albedo[index];
	float4 centerNormal = normal[index];

	float4 sum = (float4)(0.0f);
	float weightSum = 0.0f;

	for (int dy = -FILTER_RADIUS; dy <= FILTER_RADIUS; dy++) {
		for (int dx = -FILTER_RADIUS; dx <= FILTER_RADIUS; dx++) {
			int nx = (int)x + dx;
			int ny = (int)y + dy;
			if (nx < 0 || ny < 0 || nx >= (int)frameW || ny >= (int)frameH) {
				continue;
			}

			uint nIndex = (uint)ny * frameW + (uint)nx;
			float4 dAlbedo = albedo[nIndex] - centerAlbedo;
			float4 dNormal = normal[nIndex] - centerNormal;
			float weight = exp(-10.0f * dot(dAlbedo.xyz, dAlbedo.xyz)
					   -10.0f * dot(dNormal.xyz, dNormal.xyz));

			sum += result[nIndex] * weight;
			weightSum += weight;
		}
	}

	float4 filtered = weightSum > 0.0f ? sum / weightSum : result[index];
	output[index] = mix(filtered, result[index], blend);
	output[index].w = 1.0f;
}
`
