package renderer

// Meshes are lit by a point light at the eye and fade into black
// exponential fog.
const meshVertexShader = `
#version 410 core

layout (location = 0) in vec3 aPosition;
layout (location = 1) in vec3 aNormal;
layout (location = 2) in vec2 aTexCoord;

uniform mat4 uProjection;
uniform mat4 uView;
uniform mat4 uModel;

out vec3 vPosition;
out vec3 vNormal;

void main() {
	vec4 eye = uView * uModel * vec4(aPosition, 1.0);
	vPosition = eye.xyz;
	vNormal = mat3(uView * uModel) * aNormal;
	gl_Position = uProjection * eye;
}
`

const meshFragmentShader = `
#version 410 core

in vec3 vPosition;
in vec3 vNormal;

uniform float uFogDensity;

out vec4 FragColor;

void main() {
	vec3 n = normalize(vNormal);
	vec3 l = normalize(-vPosition);
	float diffuse = max(dot(n, l), 0.0);
	vec3 color = vec3(0.35) + vec3(1.0, 1.0, 0.99) * diffuse * 0.65;

	float fog = exp(-uFogDensity * length(vPosition));
	FragColor = vec4(color * clamp(fog, 0.0, 1.0), 1.0);
}
`

const overlayVertexShader = `
#version 410 core

layout (location = 0) in vec3 aPosition;

uniform mat4 uMVP;

void main() {
	gl_Position = uMVP * vec4(aPosition, 1.0);
}
`

const overlayFragmentShader = `
#version 410 core

uniform vec4 uColor;

out vec4 FragColor;

void main() {
	FragColor = uColor;
}
`
